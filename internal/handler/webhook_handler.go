// internal/handler/webhook_handler.go
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/service"
)

type WebhookHandler struct {
	Service *service.WebhookService
	Logger  *zap.SugaredLogger
}

// TwilioInbound handles inbound SMS (STOP keyword detection). Twilio posts
// form-encoded bodies.
func (h *WebhookHandler) TwilioInbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	if from == "" || body == "" {
		http.Error(w, "From and Body are required", http.StatusBadRequest)
		return
	}

	h.Service.HandleInboundSMS(r.Context(), from, body)
	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

// TwilioStatus handles delivery status callbacks.
func (h *WebhookHandler) TwilioStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	sid := r.PostFormValue("MessageSid")
	status := r.PostFormValue("MessageStatus")
	if sid == "" || status == "" {
		http.Error(w, "MessageSid and MessageStatus are required", http.StatusBadRequest)
		return
	}
	var errorCode *string
	if code := r.PostFormValue("ErrorCode"); code != "" {
		errorCode = &code
	}

	h.Service.HandleStatusCallback(r.Context(), sid, status, errorCode)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// EmailEvents accepts a single event object or an array of events.
func (h *WebhookHandler) EmailEvents(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var events []json.RawMessage
	if err := json.Unmarshal(raw, &events); err != nil {
		// Not an array; try a single object.
		var single json.RawMessage
		if err := json.Unmarshal(raw, &single); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		events = []json.RawMessage{single}
	}

	h.Service.HandleEmailEvents(r.Context(), events)
	writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

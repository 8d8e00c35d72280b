// internal/handler/messaging_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/auth"
	"github.com/gymreach/outreach-backend/internal/service"
)

type MessagingHandler struct {
	Service *service.MessagingService
	Logger  *zap.SugaredLogger
}

// SendSMS sends one message to one member of the caller's gym.
func (h *MessagingHandler) SendSMS(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	var body struct {
		MemberID    string `json:"member_id"`
		MessageBody string `json:"message_body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.MemberID) == "" || strings.TrimSpace(body.MessageBody) == "" {
		http.Error(w, "member_id and message_body are required", http.StatusBadRequest)
		return
	}

	outcome, err := h.Service.SendDirectSMS(r.Context(), user, body.MemberID, body.MessageBody)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

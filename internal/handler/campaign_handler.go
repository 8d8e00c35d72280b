// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/auth"
	"github.com/gymreach/outreach-backend/internal/repository"
	"github.com/gymreach/outreach-backend/internal/service"
)

// CampaignHandler holds the dependencies for campaign-related HTTP handlers.
type CampaignHandler struct {
	Service  *service.CampaignService
	Messages repository.MessageRepositoryInterface
	Logger   *zap.SugaredLogger
}

// StartMassOutreach kicks off a mass campaign for the caller's gym.
func (h *CampaignHandler) StartMassOutreach(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	var body struct {
		MessageBody string `json:"message_body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Service.StartMassOutreach(r.Context(), user, body.MessageBody)
	if err != nil {
		writeError(w, err)
		return
	}

	if result.Status == service.StartStatusNoEligibleMembers {
		writeJSON(w, http.StatusOK, map[string]any{"status": result.Status, "count": 0})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         result.Status,
		"campaign_id":    result.CampaignID,
		"eligible_count": result.EligibleCount,
	})
}

// TriggerProcess is the machine-to-machine resume endpoint; the API-key
// middleware runs before this handler.
func (h *CampaignHandler) TriggerProcess(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignID")

	if err := h.Service.ResumeProcessing(r.Context(), campaignID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "processing_triggered"})
}

// GetCampaign returns a campaign with its recipient status counts.
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	campaignID := chi.URLParam(r, "campaignID")

	progress, err := h.Service.Progress(r.Context(), user.GymID, campaignID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// ListDeadLetters exposes recent dead-lettered sends for operator recovery.
func (h *CampaignHandler) ListDeadLetters(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	letters, err := h.Messages.ListDeadLetters(r.Context(), user.GymID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": letters})
}

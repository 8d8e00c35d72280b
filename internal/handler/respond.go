// internal/handler/respond.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gymreach/outreach-backend/internal/apperrors"
	"github.com/gymreach/outreach-backend/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		campaignNotFound *apperrors.ErrCampaignNotFound
		memberNotFound   *apperrors.ErrMemberNotFound
		optedOut         *apperrors.ErrMemberOptedOut
		noPhone          *apperrors.ErrNoPhoneNumber
		unauthorized     *apperrors.ErrUnauthorized
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &campaignNotFound), errors.As(err, &memberNotFound):
		status = http.StatusNotFound
	case errors.As(err, &optedOut), errors.As(err, &noPhone),
		errors.Is(err, service.ErrEmptyMessageBody):
		status = http.StatusBadRequest
	case errors.As(err, &unauthorized):
		status = http.StatusUnauthorized
	}

	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

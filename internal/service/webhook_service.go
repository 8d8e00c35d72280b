// internal/service/webhook_service.go
package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/model"
	"github.com/gymreach/outreach-backend/internal/repository"
)

// stopKeywords trigger an opt-out when received as an inbound message body.
var stopKeywords = map[string]struct{}{
	"STOP":        {},
	"UNSUBSCRIBE": {},
	"CANCEL":      {},
	"END":         {},
	"QUIT":        {},
}

// WebhookService records inbound provider events. Webhooks are acknowledged
// regardless of internal failures so the provider does not retry forever;
// every failure is logged.
type WebhookService struct {
	Members  repository.MemberRepositoryInterface
	Messages repository.MessageRepositoryInterface
	Logger   *zap.SugaredLogger

	Now func() time.Time
}

func (s *WebhookService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// HandleInboundSMS records the raw event and applies STOP-keyword opt-outs.
// Opt-out applies to every member with the phone number, across gyms.
func (s *WebhookService) HandleInboundSMS(ctx context.Context, from, body string) {
	payload, _ := json.Marshal(map[string]string{"From": from, "Body": body})
	event := &model.ProviderWebhookEvent{
		Provider:   "twilio",
		EventType:  "inbound_sms",
		Payload:    payload,
		ReceivedAt: s.now(),
	}
	if err := s.Messages.InsertWebhookEvent(ctx, event); err != nil {
		s.Logger.Errorw("failed to record inbound webhook", "error", err)
	}

	keyword := strings.ToUpper(strings.TrimSpace(body))
	if _, ok := stopKeywords[keyword]; !ok {
		return
	}

	count, err := s.Members.OptOutByPhone(ctx, from, s.now())
	if err != nil {
		s.Logger.Errorw("failed to opt out by phone", "error", err)
		return
	}
	s.Logger.Infow("opt-out applied", "keyword", keyword, "members", count)
}

// HandleStatusCallback records the raw event and updates the matching
// message_sends row by provider message id.
func (s *WebhookService) HandleStatusCallback(ctx context.Context, messageSID, messageStatus string, errorCode *string) {
	payload, _ := json.Marshal(map[string]any{
		"MessageSid":    messageSID,
		"MessageStatus": messageStatus,
		"ErrorCode":     errorCode,
	})
	event := &model.ProviderWebhookEvent{
		Provider:          "twilio",
		EventType:         "status_callback",
		ProviderMessageID: &messageSID,
		Payload:           payload,
		ReceivedAt:        s.now(),
	}
	if err := s.Messages.InsertWebhookEvent(ctx, event); err != nil {
		s.Logger.Errorw("failed to record status webhook", "error", err)
	}

	if err := s.Messages.UpdateSendByProviderMessageID(ctx, messageSID, messageStatus, errorCode); err != nil {
		s.Logger.Errorw("failed to update message send status", "provider_message_id", messageSID, "error", err)
	}
}

type emailEvent struct {
	Event    string `json:"event"`
	Email    string `json:"email"`
	GymID    string `json:"gym_id"`
	MemberID string `json:"member_id"`
	URL      string `json:"url"`
}

// HandleEmailEvents records raw email provider events and writes engagement
// rows for opens and clicks that can be attributed to a member.
func (s *WebhookService) HandleEmailEvents(ctx context.Context, events []json.RawMessage) {
	for _, raw := range events {
		var parsed emailEvent
		_ = json.Unmarshal(raw, &parsed)

		record := &model.ProviderWebhookEvent{
			Provider:   "email_provider",
			EventType:  parsed.Event,
			Payload:    raw,
			ReceivedAt: s.now(),
		}
		if err := s.Messages.InsertWebhookEvent(ctx, record); err != nil {
			s.Logger.Errorw("failed to record email webhook", "error", err)
		}

		if parsed.Event != "open" && parsed.Event != "click" {
			continue
		}
		if parsed.GymID == "" || parsed.MemberID == "" {
			continue
		}

		engagement := &model.EngagementEvent{
			GymID:     parsed.GymID,
			MemberID:  parsed.MemberID,
			Channel:   "email",
			EventType: parsed.Event,
			CreatedAt: s.now(),
		}
		if parsed.URL != "" {
			engagement.URL = &parsed.URL
		}
		if err := s.Messages.InsertEngagementEvent(ctx, engagement); err != nil {
			s.Logger.Errorw("failed to record engagement event", "error", err)
		}
	}
}

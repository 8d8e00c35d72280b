// internal/service/messaging_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/apperrors"
	"github.com/gymreach/outreach-backend/internal/auth"
	"github.com/gymreach/outreach-backend/internal/model"
	"github.com/gymreach/outreach-backend/internal/provider"
	"github.com/gymreach/outreach-backend/internal/repository"
)

// MessagingService handles the interactive single-member send path.
type MessagingService struct {
	Members  repository.MemberRepositoryInterface
	Messages repository.MessageRepositoryInterface
	Audit    repository.AuditRepositoryInterface
	Gateway  provider.Gateway
	Logger   *zap.SugaredLogger

	Now func() time.Time
}

func (s *MessagingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type SendOutcome struct {
	Status            string `json:"status"`
	ProviderMessageID string `json:"provider_message_id"`
}

// SendDirectSMS sends one message to one member. Opt-out and missing-phone
// checks happen before any provider call; a provider failure is recorded in
// the history before it surfaces to the caller.
func (s *MessagingService) SendDirectSMS(ctx context.Context, user auth.UserContext, memberID, messageBody string) (*SendOutcome, error) {
	member, err := s.Members.GetByID(ctx, user.GymID, memberID)
	if err != nil {
		return nil, fmt.Errorf("member lookup: %w", err)
	}
	if member == nil {
		return nil, apperrors.NewMemberNotFound(memberID)
	}
	if member.SMSOptedOut {
		return nil, apperrors.NewMemberOptedOut(memberID, "sms")
	}
	if member.Phone == nil || *member.Phone == "" {
		return nil, apperrors.NewNoPhoneNumber(memberID)
	}

	result, sendErr := s.Gateway.SendSMS(ctx, *member.Phone, messageBody)
	if sendErr != nil {
		reason := sendErr.Error()
		record := &model.MessageSend{
			GymID:        user.GymID,
			MemberID:     memberID,
			Channel:      "sms",
			Provider:     s.Gateway.Name(),
			Status:       "failed",
			FinalStatus:  "failed",
			AttemptCount: 1,
			ErrorMessage: &reason,
			CreatedAt:    s.now(),
		}
		if err := s.Messages.InsertSend(ctx, record); err != nil {
			s.Logger.Errorw("failed to record failed send", "member_id", memberID, "error", err)
		}
		return nil, fmt.Errorf("provider send failed: %w", sendErr)
	}

	send := &model.MessageSend{
		GymID:             user.GymID,
		MemberID:          memberID,
		Channel:           "sms",
		Provider:          s.Gateway.Name(),
		ProviderMessageID: &result.ProviderMessageID,
		Status:            result.Status,
		FinalStatus:       result.Status,
		AttemptCount:      1,
		CreatedAt:         s.now(),
	}
	if err := s.Messages.InsertSend(ctx, send); err != nil {
		return nil, fmt.Errorf("record message send: %w", err)
	}

	contact := &model.ContactedLog{
		GymID:       user.GymID,
		MemberID:    memberID,
		Channel:     "sms",
		MessageBody: messageBody,
		SentAt:      s.now(),
	}
	if err := s.Messages.InsertContactedLog(ctx, contact); err != nil {
		return nil, fmt.Errorf("record contacted log: %w", err)
	}

	if err := s.Members.TouchLastContacted(ctx, user.GymID, memberID, s.now()); err != nil {
		return nil, fmt.Errorf("update last_contacted_at: %w", err)
	}

	metadata, _ := json.Marshal(map[string]string{"channel": "sms", "status": result.Status})
	audit := &model.AuditLog{
		GymID:      user.GymID,
		UserID:     user.UserID,
		Action:     "send_sms",
		EntityType: "member",
		EntityID:   memberID,
		Metadata:   metadata,
	}
	if err := s.Audit.Insert(ctx, audit); err != nil {
		s.Logger.Errorw("failed to write audit log", "action", "send_sms", "error", err)
	}

	return &SendOutcome{Status: "success", ProviderMessageID: result.ProviderMessageID}, nil
}

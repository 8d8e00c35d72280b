// internal/service/campaign_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/apperrors"
	"github.com/gymreach/outreach-backend/internal/auth"
	"github.com/gymreach/outreach-backend/internal/model"
	"github.com/gymreach/outreach-backend/internal/repository"
)

// ResumeFallbackBody is used for campaigns created before message bodies were
// persisted on the campaign row.
const ResumeFallbackBody = "Hi, just checking in! Reply STOP to unsubscribe."

var ErrEmptyMessageBody = errors.New("message_body is required")

// Scheduler hands a dispatch job off for background execution.
type Scheduler interface {
	Schedule(job DispatchJob) error
}

// CampaignService owns the campaign lifecycle: eligibility, creation, and
// scheduling of the dispatch engine.
type CampaignService struct {
	Campaigns repository.CampaignRepositoryInterface
	Members   repository.MemberRepositoryInterface
	Audit     repository.AuditRepositoryInterface
	Scheduler Scheduler
	Logger    *zap.SugaredLogger

	ScoreThreshold  float64
	ContactCooldown time.Duration

	Now func() time.Time
}

func (s *CampaignService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type StartResult struct {
	Status        string `json:"status"`
	CampaignID    string `json:"campaign_id,omitempty"`
	EligibleCount int    `json:"eligible_count"`
}

const (
	StartStatusNoEligibleMembers = "no_eligible_members"
	StartStatusCampaignStarted   = "campaign_started"
)

// StartMassOutreach computes the eligible member set for the caller's gym,
// creates the campaign and its queued recipient rows, and schedules the
// dispatch engine fire-and-forget.
//
// total_recipients on the campaign stores the raw eligible count before
// opt-out filtering; the returned EligibleCount is the post-filter queued
// count. The two can differ and both are intentional.
func (s *CampaignService) StartMassOutreach(ctx context.Context, user auth.UserContext, messageBody string) (*StartResult, error) {
	if strings.TrimSpace(messageBody) == "" {
		return nil, ErrEmptyMessageBody
	}

	cutoff := s.now().Add(-s.ContactCooldown)
	eligible, err := s.Members.ListEligible(ctx, user.GymID, s.ScoreThreshold, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list eligible members: %w", err)
	}

	if len(eligible) == 0 {
		return &StartResult{Status: StartStatusNoEligibleMembers, EligibleCount: 0}, nil
	}

	campaign := &model.Campaign{
		GymID:           user.GymID,
		Type:            model.CampaignTypeMassRiskOutreach,
		ScoreThreshold:  s.ScoreThreshold,
		Status:          model.CampaignStatusDraft,
		MessageBody:     messageBody,
		TotalRecipients: len(eligible),
	}
	if err := s.Campaigns.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	recipients := make([]model.CampaignRecipient, 0, len(eligible))
	for _, m := range eligible {
		if m.SMSOptedOut {
			continue
		}
		recipients = append(recipients, model.CampaignRecipient{
			CampaignID: campaign.ID,
			GymID:      user.GymID,
			MemberID:   m.MemberID,
			Channel:    "sms",
			Status:     model.RecipientStatusQueued,
		})
	}

	if len(recipients) == 0 {
		// Everyone eligible had opted out; close the campaign immediately.
		if err := s.Campaigns.CompleteWithTotal(ctx, campaign.ID, 0); err != nil {
			return nil, fmt.Errorf("complete empty campaign: %w", err)
		}
		return &StartResult{
			Status:        StartStatusCampaignStarted,
			CampaignID:    campaign.ID,
			EligibleCount: 0,
		}, nil
	}

	if err := s.Campaigns.BulkInsertRecipients(ctx, recipients); err != nil {
		return nil, fmt.Errorf("insert recipients: %w", err)
	}

	job := DispatchJob{CampaignID: campaign.ID, GymID: user.GymID, MessageBody: messageBody}
	if err := s.Scheduler.Schedule(job); err != nil {
		// Recipients stay queued; the manual trigger endpoint recovers.
		s.Logger.Errorw("failed to schedule dispatch", "campaign_id", campaign.ID, "error", err)
	}

	s.auditStart(ctx, user, campaign.ID, len(recipients))

	return &StartResult{
		Status:        StartStatusCampaignStarted,
		CampaignID:    campaign.ID,
		EligibleCount: len(recipients),
	}, nil
}

func (s *CampaignService) auditStart(ctx context.Context, user auth.UserContext, campaignID string, queued int) {
	metadata, _ := json.Marshal(map[string]int{"recipients_count": queued})
	entry := &model.AuditLog{
		GymID:      user.GymID,
		UserID:     user.UserID,
		Action:     "start_mass_campaign",
		EntityType: "campaign",
		EntityID:   campaignID,
		Metadata:   metadata,
	}
	if err := s.Audit.Insert(ctx, entry); err != nil {
		s.Logger.Errorw("failed to write audit log", "action", "start_mass_campaign", "error", err)
	}
}

// ResumeProcessing re-schedules the dispatch engine for an existing campaign.
// Terminal recipient rows are untouched; rows stranded in "processing" by a
// crashed worker are returned to "queued" first.
func (s *CampaignService) ResumeProcessing(ctx context.Context, campaignID string) error {
	campaign, err := s.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}

	requeued, err := s.Campaigns.RequeueStaleProcessing(ctx, campaignID)
	if err != nil {
		s.Logger.Warnw("failed to requeue stale processing rows", "campaign_id", campaignID, "error", err)
	} else if requeued > 0 {
		s.Logger.Infow("requeued stale recipients", "campaign_id", campaignID, "count", requeued)
	}

	body := campaign.MessageBody
	if body == "" {
		body = ResumeFallbackBody
	}

	job := DispatchJob{CampaignID: campaign.ID, GymID: campaign.GymID, MessageBody: body}
	if err := s.Scheduler.Schedule(job); err != nil {
		return fmt.Errorf("schedule dispatch: %w", err)
	}
	return nil
}

type CampaignProgress struct {
	Campaign *model.Campaign `json:"campaign"`
	Stats    map[string]int  `json:"stats"`
}

// Progress returns the campaign and its recipient status counts, scoped to
// the caller's gym.
func (s *CampaignService) Progress(ctx context.Context, gymID, campaignID string) (*CampaignProgress, error) {
	campaign, err := s.Campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.GymID != gymID {
		return nil, apperrors.NewCampaignNotFound(campaignID)
	}

	stats, err := s.Campaigns.Stats(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("campaign stats: %w", err)
	}

	total := 0
	for _, count := range stats {
		total += count
	}
	stats["total"] = total

	return &CampaignProgress{Campaign: campaign, Stats: stats}, nil
}

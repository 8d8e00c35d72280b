// internal/service/dispatch_engine.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/metrics"
	"github.com/gymreach/outreach-backend/internal/model"
	"github.com/gymreach/outreach-backend/internal/provider"
	"github.com/gymreach/outreach-backend/internal/repository"
)

// DispatchJob identifies one dispatch run for a campaign.
type DispatchJob struct {
	CampaignID  string `json:"campaign_id"`
	GymID       string `json:"gym_id"`
	MessageBody string `json:"message_body"`
}

// DispatchEngine drains a campaign's queued recipients to terminal statuses
// and closes the campaign out. Recipients are claimed in bounded batches and
// processed strictly sequentially within a run.
type DispatchEngine struct {
	Campaigns repository.CampaignRepositoryInterface
	Members   repository.MemberRepositoryInterface
	Messages  repository.MessageRepositoryInterface
	Gateway   provider.Gateway
	Metrics   *metrics.Dispatch
	Logger    *zap.SugaredLogger

	BatchSize   int
	PacingDelay time.Duration

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time
}

func (e *DispatchEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *DispatchEngine) batchSize() int {
	if e.BatchSize > 0 {
		return e.BatchSize
	}
	return 50
}

// Run processes the campaign until no queued recipients remain, then marks it
// completed. Send failures never abort the run; only the claim query and the
// initial status transition can.
func (e *DispatchEngine) Run(ctx context.Context, job DispatchJob) error {
	e.Logger.Infow("dispatch starting", "campaign_id", job.CampaignID)

	if err := e.Campaigns.UpdateStatus(ctx, job.CampaignID, model.CampaignStatusRunning); err != nil {
		return fmt.Errorf("mark campaign running: %w", err)
	}

	for {
		batch, err := e.Campaigns.ClaimQueuedBatch(ctx, job.CampaignID, e.batchSize())
		if err != nil {
			return fmt.Errorf("claim batch: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		e.Logger.Infow("processing batch", "campaign_id", job.CampaignID, "size", len(batch))

		for i := range batch {
			e.processRecipient(ctx, job, &batch[i])

			// Pacing between recipients keeps us under provider rate limits.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.PacingDelay):
			}
		}
	}

	if err := e.Campaigns.UpdateStatus(ctx, job.CampaignID, model.CampaignStatusCompleted); err != nil {
		return fmt.Errorf("mark campaign completed: %w", err)
	}
	e.Metrics.CampaignsCompleted.Inc()
	e.Logger.Infow("dispatch finished", "campaign_id", job.CampaignID)
	return nil
}

func (e *DispatchEngine) processRecipient(ctx context.Context, job DispatchJob, rec *model.CampaignRecipient) {
	switch rec.Channel {
	case "sms":
		e.processSMS(ctx, job, rec)
	default:
		e.Logger.Warnw("unknown channel", "recipient_id", rec.ID, "channel", rec.Channel)
		e.setRecipientStatus(ctx, rec, model.RecipientStatusFailed)
		e.Metrics.Failed.Inc()
	}
}

func (e *DispatchEngine) processSMS(ctx context.Context, job DispatchJob, rec *model.CampaignRecipient) {
	// Fresh opt-out/phone read: the member may have opted out after the row
	// was queued.
	member, err := e.Members.GetByID(ctx, job.GymID, rec.MemberID)
	if err != nil {
		e.failRecipient(ctx, job, rec, fmt.Errorf("member lookup: %w", err))
		return
	}

	if member == nil || member.SMSOptedOut {
		// No provider call and no history row for skips.
		e.setRecipientStatus(ctx, rec, model.RecipientStatusSkipped)
		e.Metrics.Skipped.Inc()
		return
	}

	if member.Phone == nil || *member.Phone == "" {
		e.setRecipientStatus(ctx, rec, model.RecipientStatusFailed)
		e.Metrics.Failed.Inc()
		return
	}

	result, err := e.Gateway.SendSMS(ctx, *member.Phone, job.MessageBody)
	if err != nil {
		e.Logger.Warnw("send failed", "campaign_id", job.CampaignID, "member_id", rec.MemberID, "error", err)
		e.failRecipient(ctx, job, rec, err)
		return
	}

	send := &model.MessageSend{
		GymID:             job.GymID,
		MemberID:          rec.MemberID,
		Channel:           "sms",
		Provider:          e.Gateway.Name() + "_campaign",
		ProviderMessageID: &result.ProviderMessageID,
		Status:            "sent",
		FinalStatus:       "sent",
		AttemptCount:      1,
		CreatedAt:         e.now(),
	}
	if err := e.Messages.InsertSend(ctx, send); err != nil {
		// History writes never block the status transition.
		e.Logger.Errorw("failed to record message send", "member_id", rec.MemberID, "error", err)
	}

	e.setRecipientStatus(ctx, rec, model.RecipientStatusSent)

	if err := e.Members.TouchLastContacted(ctx, job.GymID, rec.MemberID, e.now()); err != nil {
		e.Logger.Errorw("failed to update last_contacted_at", "member_id", rec.MemberID, "error", err)
	}
	e.Metrics.Sent.Inc()
}

// failRecipient marks the recipient failed and writes the dead-letter and
// history rows. The dead letter is the recovery audit trail; there is no
// automatic re-queue.
func (e *DispatchEngine) failRecipient(ctx context.Context, job DispatchJob, rec *model.CampaignRecipient, cause error) {
	e.setRecipientStatus(ctx, rec, model.RecipientStatusFailed)

	reason := cause.Error()
	dlq := &model.DeadLetterMessage{
		GymID:       job.GymID,
		MemberID:    rec.MemberID,
		Channel:     rec.Channel,
		MessageBody: job.MessageBody,
		Reason:      reason,
		CreatedAt:   e.now(),
	}
	if err := e.Messages.InsertDeadLetter(ctx, dlq); err != nil {
		e.Logger.Errorw("failed to insert dead letter", "member_id", rec.MemberID, "error", err)
	}

	send := &model.MessageSend{
		GymID:        job.GymID,
		MemberID:     rec.MemberID,
		Channel:      rec.Channel,
		Provider:     e.Gateway.Name() + "_campaign",
		Status:       "failed",
		FinalStatus:  "failed",
		AttemptCount: 1,
		ErrorMessage: &reason,
		CreatedAt:    e.now(),
	}
	if err := e.Messages.InsertSend(ctx, send); err != nil {
		e.Logger.Errorw("failed to record failed send", "member_id", rec.MemberID, "error", err)
	}
	e.Metrics.Failed.Inc()
}

func (e *DispatchEngine) setRecipientStatus(ctx context.Context, rec *model.CampaignRecipient, status string) {
	if err := e.Campaigns.UpdateRecipientStatus(ctx, rec.ID, status); err != nil {
		e.Logger.Errorw("failed to update recipient status",
			"recipient_id", rec.ID, "status", status, "error", err)
		return
	}
	rec.Status = status
}

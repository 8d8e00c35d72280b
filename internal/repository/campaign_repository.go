package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gymreach/outreach-backend/internal/apperrors"
	"github.com/gymreach/outreach-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	UpdateStatus(ctx context.Context, campaignID, status string) error
	CompleteWithTotal(ctx context.Context, campaignID string, totalRecipients int) error

	BulkInsertRecipients(ctx context.Context, recipients []model.CampaignRecipient) error
	ClaimQueuedBatch(ctx context.Context, campaignID string, limit int) ([]model.CampaignRecipient, error)
	UpdateRecipientStatus(ctx context.Context, recipientID, status string) error
	RequeueStaleProcessing(ctx context.Context, campaignID string) (int64, error)
	Stats(ctx context.Context, campaignID string) (map[string]int, error)
}

type CampaignRepository struct {
	DB *sqlx.DB
}

// ====================== Campaigns ======================

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}
	c.CreatedAt = time.Now()

	query := `
        INSERT INTO campaigns (id, gym_id, type, score_threshold, status, message_body, total_recipients, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.GymID, c.Type, c.ScoreThreshold, c.Status, c.MessageBody, c.TotalRecipients, c.CreatedAt)
	return err
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `
        SELECT id, gym_id, type, score_threshold, status, message_body, total_recipients, created_at, updated_at
        FROM campaigns WHERE id = $1
    `
	var c model.Campaign
	if err := r.DB.GetContext(ctx, &c, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, campaignID, status string) error {
	query := `UPDATE campaigns SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, status, campaignID)
	return err
}

func (r *CampaignRepository) CompleteWithTotal(ctx context.Context, campaignID string, totalRecipients int) error {
	query := `UPDATE campaigns SET status = $1, total_recipients = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.DB.ExecContext(ctx, query, model.CampaignStatusCompleted, totalRecipients, campaignID)
	return err
}

// ====================== Recipients ======================

func (r *CampaignRepository) BulkInsertRecipients(ctx context.Context, recipients []model.CampaignRecipient) error {
	if len(recipients) == 0 {
		return nil
	}
	now := time.Now()
	for i := range recipients {
		if recipients[i].ID == "" {
			recipients[i].ID = uuid.NewString()
		}
		if recipients[i].Status == "" {
			recipients[i].Status = model.RecipientStatusQueued
		}
		recipients[i].CreatedAt = now
	}

	query := `
        INSERT INTO campaign_recipients (id, campaign_id, gym_id, member_id, channel, status, created_at)
        VALUES (:id, :campaign_id, :gym_id, :member_id, :channel, :status, :created_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, recipients)
	return err
}

// ClaimQueuedBatch atomically moves up to limit queued rows to "processing"
// and returns them. SKIP LOCKED keeps concurrent workers off the same rows,
// so a resume call racing a live worker cannot double-send.
func (r *CampaignRepository) ClaimQueuedBatch(ctx context.Context, campaignID string, limit int) ([]model.CampaignRecipient, error) {
	query := `
        UPDATE campaign_recipients SET status = $1, updated_at = NOW()
        WHERE id IN (
            SELECT id FROM campaign_recipients
            WHERE campaign_id = $2 AND status = $3
            LIMIT $4
            FOR UPDATE SKIP LOCKED
        )
        RETURNING id, campaign_id, gym_id, member_id, channel, status, created_at, updated_at
    `
	batch := []model.CampaignRecipient{}
	err := r.DB.SelectContext(ctx, &batch, query,
		model.RecipientStatusProcessing, campaignID, model.RecipientStatusQueued, limit)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *CampaignRepository) UpdateRecipientStatus(ctx context.Context, recipientID, status string) error {
	query := `UPDATE campaign_recipients SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, status, recipientID)
	return err
}

// RequeueStaleProcessing returns rows stranded in "processing" (worker died
// mid-batch) to "queued" so a resume run can pick them up.
func (r *CampaignRepository) RequeueStaleProcessing(ctx context.Context, campaignID string) (int64, error) {
	query := `
        UPDATE campaign_recipients SET status = $1, updated_at = NOW()
        WHERE campaign_id = $2 AND status = $3
    `
	res, err := r.DB.ExecContext(ctx, query,
		model.RecipientStatusQueued, campaignID, model.RecipientStatusProcessing)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *CampaignRepository) Stats(ctx context.Context, campaignID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) AS count FROM campaign_recipients WHERE campaign_id = $1 GROUP BY status`
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		model.RecipientStatusQueued:  0,
		model.RecipientStatusSent:    0,
		model.RecipientStatusFailed:  0,
		model.RecipientStatusSkipped: 0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)

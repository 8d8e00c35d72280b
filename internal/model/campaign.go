// internal/model/campaign.go
package model

import "time"

// Campaign statuses form a linear lifecycle: draft -> running -> completed.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusRunning   = "running"
	CampaignStatusCompleted = "completed"
)

// Recipient statuses. "processing" is a transient claim state held by the
// dispatch engine while a batch is in flight; the rest are terminal.
const (
	RecipientStatusQueued     = "queued"
	RecipientStatusProcessing = "processing"
	RecipientStatusSent       = "sent"
	RecipientStatusFailed     = "failed"
	RecipientStatusSkipped    = "skipped_opted_out"
)

const CampaignTypeMassRiskOutreach = "mass_risk_outreach"

type Campaign struct {
	ID              string     `db:"id" json:"id"`
	GymID           string     `db:"gym_id" json:"gym_id"`
	Type            string     `db:"type" json:"type"`
	ScoreThreshold  float64    `db:"score_threshold" json:"score_threshold"`
	Status          string     `db:"status" json:"status"`
	MessageBody     string     `db:"message_body" json:"message_body"`
	TotalRecipients int        `db:"total_recipients" json:"total_recipients"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type CampaignRecipient struct {
	ID         string     `db:"id" json:"id"`
	CampaignID string     `db:"campaign_id" json:"campaign_id"`
	GymID      string     `db:"gym_id" json:"gym_id"`
	MemberID   string     `db:"member_id" json:"member_id"`
	Channel    string     `db:"channel" json:"channel"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

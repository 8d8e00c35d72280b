package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gymreach/outreach-backend/internal/model"
)

type MessageRepositoryInterface interface {
	InsertSend(ctx context.Context, send *model.MessageSend) error
	UpdateSendByProviderMessageID(ctx context.Context, providerMessageID, status string, errorCode *string) error

	InsertDeadLetter(ctx context.Context, dlq *model.DeadLetterMessage) error
	ListDeadLetters(ctx context.Context, gymID string, limit int) ([]model.DeadLetterMessage, error)

	InsertWebhookEvent(ctx context.Context, event *model.ProviderWebhookEvent) error
	InsertEngagementEvent(ctx context.Context, event *model.EngagementEvent) error
	InsertContactedLog(ctx context.Context, entry *model.ContactedLog) error
}

type MessageRepository struct {
	DB *sqlx.DB
}

func (r *MessageRepository) InsertSend(ctx context.Context, send *model.MessageSend) error {
	if send.ID == "" {
		send.ID = uuid.NewString()
	}
	if send.CreatedAt.IsZero() {
		send.CreatedAt = time.Now()
	}
	query := `
        INSERT INTO message_sends
        (id, gym_id, member_id, channel, provider, provider_message_id, status, final_status, attempt_count, error_message, error_code, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err := r.DB.ExecContext(ctx, query,
		send.ID, send.GymID, send.MemberID, send.Channel, send.Provider,
		send.ProviderMessageID, send.Status, send.FinalStatus, send.AttemptCount,
		send.ErrorMessage, send.ErrorCode, send.CreatedAt)
	return err
}

// UpdateSendByProviderMessageID applies a provider status callback to the
// matching history row. Unknown message ids are a silent no-op.
func (r *MessageRepository) UpdateSendByProviderMessageID(ctx context.Context, providerMessageID, status string, errorCode *string) error {
	query := `
        UPDATE message_sends
        SET status = $1, error_code = COALESCE($2, error_code), updated_at = NOW()
        WHERE provider_message_id = $3
    `
	_, err := r.DB.ExecContext(ctx, query, status, errorCode, providerMessageID)
	return err
}

func (r *MessageRepository) InsertDeadLetter(ctx context.Context, dlq *model.DeadLetterMessage) error {
	if dlq.ID == "" {
		dlq.ID = uuid.NewString()
	}
	if dlq.CreatedAt.IsZero() {
		dlq.CreatedAt = time.Now()
	}
	query := `
        INSERT INTO dead_letter_messages (id, gym_id, member_id, channel, message_body, reason, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.DB.ExecContext(ctx, query,
		dlq.ID, dlq.GymID, dlq.MemberID, dlq.Channel, dlq.MessageBody, dlq.Reason, dlq.CreatedAt)
	return err
}

func (r *MessageRepository) ListDeadLetters(ctx context.Context, gymID string, limit int) ([]model.DeadLetterMessage, error) {
	query := `
        SELECT id, gym_id, member_id, channel, message_body, reason, created_at
        FROM dead_letter_messages
        WHERE gym_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	letters := []model.DeadLetterMessage{}
	if err := r.DB.SelectContext(ctx, &letters, query, gymID, limit); err != nil {
		return nil, err
	}
	return letters, nil
}

func (r *MessageRepository) InsertWebhookEvent(ctx context.Context, event *model.ProviderWebhookEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}
	query := `
        INSERT INTO provider_webhook_events (id, provider, event_type, provider_message_id, payload, received_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.ExecContext(ctx, query,
		event.ID, event.Provider, event.EventType, event.ProviderMessageID, []byte(event.Payload), event.ReceivedAt)
	return err
}

func (r *MessageRepository) InsertEngagementEvent(ctx context.Context, event *model.EngagementEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	query := `
        INSERT INTO engagement_events (id, gym_id, member_id, channel, event_type, url, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.DB.ExecContext(ctx, query,
		event.ID, event.GymID, event.MemberID, event.Channel, event.EventType, event.URL, event.CreatedAt)
	return err
}

func (r *MessageRepository) InsertContactedLog(ctx context.Context, entry *model.ContactedLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now()
	}
	query := `
        INSERT INTO contacted_log (id, gym_id, member_id, channel, message_body, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.ExecContext(ctx, query,
		entry.ID, entry.GymID, entry.MemberID, entry.Channel, entry.MessageBody, entry.SentAt)
	return err
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)

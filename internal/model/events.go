// internal/model/events.go
package model

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	GymID      string          `db:"gym_id" json:"gym_id"`
	UserID     string          `db:"user_id" json:"user_id"`
	Action     string          `db:"action" json:"action"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   string          `db:"entity_id" json:"entity_id"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// ProviderWebhookEvent is the raw log of every inbound provider callback.
type ProviderWebhookEvent struct {
	ID                string          `db:"id" json:"id"`
	Provider          string          `db:"provider" json:"provider"`
	EventType         string          `db:"event_type" json:"event_type"`
	ProviderMessageID *string         `db:"provider_message_id" json:"provider_message_id,omitempty"`
	Payload           json.RawMessage `db:"payload" json:"payload"`
	ReceivedAt        time.Time       `db:"received_at" json:"received_at"`
}

type EngagementEvent struct {
	ID        string    `db:"id" json:"id"`
	GymID     string    `db:"gym_id" json:"gym_id"`
	MemberID  string    `db:"member_id" json:"member_id"`
	Channel   string    `db:"channel" json:"channel"`
	EventType string    `db:"event_type" json:"event_type"`
	URL       *string   `db:"url" json:"url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ContactedLog is the business-facing record of a member being contacted,
// kept separate from the provider-level message_sends history.
type ContactedLog struct {
	ID          string    `db:"id" json:"id"`
	GymID       string    `db:"gym_id" json:"gym_id"`
	MemberID    string    `db:"member_id" json:"member_id"`
	Channel     string    `db:"channel" json:"channel"`
	MessageBody string    `db:"message_body" json:"message_body"`
	SentAt      time.Time `db:"sent_at" json:"sent_at"`
}

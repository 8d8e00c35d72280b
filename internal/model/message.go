// internal/model/message.go
package model

import "time"

// MessageSend is an append-only history row, one per send attempt.
type MessageSend struct {
	ID                string     `db:"id" json:"id"`
	GymID             string     `db:"gym_id" json:"gym_id"`
	MemberID          string     `db:"member_id" json:"member_id"`
	Channel           string     `db:"channel" json:"channel"`
	Provider          string     `db:"provider" json:"provider"`
	ProviderMessageID *string    `db:"provider_message_id" json:"provider_message_id,omitempty"`
	Status            string     `db:"status" json:"status"`
	FinalStatus       string     `db:"final_status" json:"final_status"`
	AttemptCount      int        `db:"attempt_count" json:"attempt_count"`
	ErrorMessage      *string    `db:"error_message" json:"error_message,omitempty"`
	ErrorCode         *string    `db:"error_code" json:"error_code,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// DeadLetterMessage records a send that failed hard. It is the recovery
// audit trail for operators, not an automatic retry queue.
type DeadLetterMessage struct {
	ID          string    `db:"id" json:"id"`
	GymID       string    `db:"gym_id" json:"gym_id"`
	MemberID    string    `db:"member_id" json:"member_id"`
	Channel     string    `db:"channel" json:"channel"`
	MessageBody string    `db:"message_body" json:"message_body"`
	Reason      string    `db:"reason" json:"reason"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

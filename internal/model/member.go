// internal/model/member.go
package model

import "time"

type Member struct {
	MemberID        string     `db:"member_id" json:"member_id"`
	GymID           string     `db:"gym_id" json:"gym_id"`
	FirstName       string     `db:"first_name" json:"first_name"`
	LastName        string     `db:"last_name" json:"last_name"`
	Email           string     `db:"email" json:"email"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	SMSOptedOut     bool       `db:"sms_opted_out" json:"sms_opted_out"`
	SMSOptedOutAt   *time.Time `db:"sms_opted_out_at" json:"sms_opted_out_at,omitempty"`
	LastChurnScore  float64    `db:"last_churn_score" json:"last_churn_score"`
	LastContactedAt *time.Time `db:"last_contacted_at" json:"last_contacted_at,omitempty"`

	// Churn model feature columns, populated by the scoring pipeline
	// (seeded for demos, never written by this service).
	AvgClassFrequency float64 `db:"avg_class_frequency_total" json:"avg_class_frequency_total"`
	DaysSinceVisit    int     `db:"days_since_last_visit" json:"days_since_last_visit"`
	LifetimeTenure    float64 `db:"lifetime_tenure" json:"lifetime_tenure"`
	Age               int     `db:"age" json:"age"`
}

// Profile links an authenticated user to a gym and role.
type Profile struct {
	UserID string `db:"user_id" json:"user_id"`
	GymID  string `db:"gym_id" json:"gym_id"`
	Role   string `db:"role" json:"role"`
}

const (
	RoleAdmin    = "admin"
	RoleGymOwner = "gym_owner"
)

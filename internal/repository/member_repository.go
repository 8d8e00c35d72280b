package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gymreach/outreach-backend/internal/model"
)

type MemberRepositoryInterface interface {
	// GetByID returns (nil, nil) when the member does not exist in the gym.
	GetByID(ctx context.Context, gymID, memberID string) (*model.Member, error)
	ListEligible(ctx context.Context, gymID string, threshold float64, contactedBefore time.Time) ([]model.Member, error)
	TouchLastContacted(ctx context.Context, gymID, memberID string, at time.Time) error
	OptOutByPhone(ctx context.Context, phone string, at time.Time) (int64, error)
}

type MemberRepository struct {
	DB *sqlx.DB
}

func (r *MemberRepository) GetByID(ctx context.Context, gymID, memberID string) (*model.Member, error) {
	query := `
        SELECT member_id, gym_id, first_name, last_name, email, phone,
               sms_opted_out, sms_opted_out_at, last_churn_score, last_contacted_at
        FROM members
        WHERE member_id = $1 AND gym_id = $2
    `
	var m model.Member
	if err := r.DB.GetContext(ctx, &m, query, memberID, gymID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListEligible applies the outreach policy: churn score at or above the
// threshold and no contact since the cooldown cutoff.
func (r *MemberRepository) ListEligible(ctx context.Context, gymID string, threshold float64, contactedBefore time.Time) ([]model.Member, error) {
	query := `
        SELECT member_id, gym_id, phone, sms_opted_out, last_churn_score, last_contacted_at
        FROM members
        WHERE gym_id = $1
          AND last_churn_score >= $2
          AND (last_contacted_at IS NULL OR last_contacted_at < $3)
    `
	members := []model.Member{}
	if err := r.DB.SelectContext(ctx, &members, query, gymID, threshold, contactedBefore); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *MemberRepository) TouchLastContacted(ctx context.Context, gymID, memberID string, at time.Time) error {
	query := `UPDATE members SET last_contacted_at = $1 WHERE member_id = $2 AND gym_id = $3`
	_, err := r.DB.ExecContext(ctx, query, at, memberID, gymID)
	return err
}

// OptOutByPhone opts out every member with the phone number across all gyms.
// Compliance-safe default for STOP handling, since one phone may back
// memberships at several gyms.
func (r *MemberRepository) OptOutByPhone(ctx context.Context, phone string, at time.Time) (int64, error) {
	query := `UPDATE members SET sms_opted_out = TRUE, sms_opted_out_at = $1 WHERE phone = $2`
	res, err := r.DB.ExecContext(ctx, query, at, phone)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ MemberRepositoryInterface = (*MemberRepository)(nil)

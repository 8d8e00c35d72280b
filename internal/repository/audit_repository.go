package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gymreach/outreach-backend/internal/model"
)

type AuditRepositoryInterface interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
}

type AuditRepository struct {
	DB *sqlx.DB
}

func (r *AuditRepository) Insert(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	metadata := []byte(entry.Metadata)
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	query := `
        INSERT INTO audit_logs (id, gym_id, user_id, action, entity_type, entity_id, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.ExecContext(ctx, query,
		entry.ID, entry.GymID, entry.UserID, entry.Action, entry.EntityType, entry.EntityID, metadata, entry.CreatedAt)
	return err
}

var _ AuditRepositoryInterface = (*AuditRepository)(nil)

type ProfileRepositoryInterface interface {
	// GetByUserID returns (nil, nil) when no profile row exists.
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
}

type ProfileRepository struct {
	DB *sqlx.DB
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	query := `SELECT user_id, gym_id, role FROM profiles WHERE user_id = $1`
	var p model.Profile
	if err := r.DB.GetContext(ctx, &p, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

var _ ProfileRepositoryInterface = (*ProfileRepository)(nil)

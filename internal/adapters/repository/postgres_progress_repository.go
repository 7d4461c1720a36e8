package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

var _ domain.ProgressRepository = (*PostgresProgressRepository)(nil)

type PostgresProgressRepository struct {
	db *sqlx.DB
}

func NewPostgresProgressRepository(db *sqlx.DB) *PostgresProgressRepository {
	return &PostgresProgressRepository{db: db}
}

const progressColumns = `id, user_id, module, step, completed, completed_at, notes, metadata, created_at, updated_at`

func (r *PostgresProgressRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ProgressRecord, error) {
	records := []*domain.ProgressRecord{}

	query := `SELECT ` + progressColumns + ` FROM progress WHERE user_id = $1 ORDER BY module, created_at`

	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list progress failed: %w", err)
	}
	return records, nil
}

func (r *PostgresProgressRepository) Get(ctx context.Context, userID string, module domain.ModuleID, step string) (*domain.ProgressRecord, error) {
	var record domain.ProgressRecord

	query := `SELECT ` + progressColumns + ` FROM progress WHERE user_id = $1 AND module = $2 AND step = $3`

	err := r.db.GetContext(ctx, &record, query, userID, module, step)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProgressNotFound
		}
		return nil, fmt.Errorf("repository: get progress failed: %w", err)
	}
	return &record, nil
}

// Upsert keeps the original id and created_at of an existing row.
func (r *PostgresProgressRepository) Upsert(ctx context.Context, record *domain.ProgressRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Metadata == nil {
		record.Metadata = domain.Metadata{}
	}

	query := `
		INSERT INTO progress (
			id, user_id, module, step,
			completed, completed_at, notes, metadata,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, module, step) DO UPDATE SET
			completed    = EXCLUDED.completed,
			completed_at = EXCLUDED.completed_at,
			notes        = EXCLUDED.notes,
			metadata     = EXCLUDED.metadata,
			updated_at   = EXCLUDED.updated_at
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		record.ID,
		record.UserID,
		record.Module,
		record.Step,
		record.Completed,
		record.CompletedAt,
		record.Notes,
		record.Metadata,
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: upsert progress failed: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

var _ domain.ProfileRepository = (*PostgresProfileRepository)(nil)

type PostgresProfileRepository struct {
	db *sqlx.DB
}

func NewPostgresProfileRepository(db *sqlx.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{
		db: db,
	}
}

func (r *PostgresProfileRepository) Get(ctx context.Context, id string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		SELECT id, email, full_name, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var profile domain.Profile

	err := r.db.GetContext(ctx, &profile, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("repository: get profile failed: %w", err)
	}

	return &profile, nil
}

// Upsert syncs the profile from the auth user. An existing full name is
// kept when the incoming one is empty, and created_at never moves.
func (r *PostgresProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		INSERT INTO profiles (id, email, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email      = EXCLUDED.email,
			full_name  = COALESCE(EXCLUDED.full_name, profiles.full_name),
			updated_at = EXCLUDED.updated_at
		RETURNING full_name, created_at
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		p.ID,
		p.Email,
		p.FullName,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.FullName, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: upsert profile failed: %w", err)
	}

	return nil
}

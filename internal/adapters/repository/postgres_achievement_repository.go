package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

var _ domain.AchievementRepository = (*PostgresAchievementRepository)(nil)

type PostgresAchievementRepository struct {
	db *sqlx.DB
}

func NewPostgresAchievementRepository(db *sqlx.DB) *PostgresAchievementRepository {
	return &PostgresAchievementRepository{db: db}
}

func (r *PostgresAchievementRepository) ListEarned(ctx context.Context, userID string) ([]*domain.EarnedAchievement, error) {
	earned := []*domain.EarnedAchievement{}

	query := `
		SELECT id, user_id, achievement_id, earned_at, metadata
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY earned_at`

	if err := r.db.SelectContext(ctx, &earned, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list achievements failed: %w", err)
	}
	return earned, nil
}

// Insert relies on the (user_id, achievement_id) unique key, so concurrent
// awards of the same achievement collapse into a single row.
func (r *PostgresAchievementRepository) Insert(ctx context.Context, e *domain.EarnedAchievement) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if e.Metadata == nil {
		e.Metadata = domain.Metadata{}
	}

	query := `
		INSERT INTO user_achievements (id, user_id, achievement_id, earned_at, metadata)
		VALUES (:id, :user_id, :achievement_id, :earned_at, :metadata)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`

	res, err := r.db.NamedExecContext(ctx, query, e)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("repository: insert achievement failed: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("repository: insert achievement failed: %w", err)
	}
	return n == 1, nil
}

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

var _ domain.StreakRepository = (*PostgresStreakRepository)(nil)

type PostgresStreakRepository struct {
	db *sqlx.DB
}

func NewPostgresStreakRepository(db *sqlx.DB) *PostgresStreakRepository {
	return &PostgresStreakRepository{db: db}
}

// Dates travel as YYYY-MM-DD text so no time zone ever touches them.
func (r *PostgresStreakRepository) Get(ctx context.Context, userID string) (*domain.StreakState, error) {
	var state domain.StreakState

	query := `
		SELECT
			user_id,
			login_streak_current, login_streak_longest,
			to_char(last_login_date, 'YYYY-MM-DD') AS last_login_date,
			task_streak_current, task_streak_longest,
			to_char(last_task_date, 'YYYY-MM-DD') AS last_task_date,
			total_login_days, total_tasks_completed,
			created_at, updated_at
		FROM user_streaks
		WHERE user_id = $1`

	err := r.db.GetContext(ctx, &state, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStreakNotFound
		}
		return nil, fmt.Errorf("repository: get streak failed: %w", err)
	}
	return &state, nil
}

func (r *PostgresStreakRepository) Save(ctx context.Context, state *domain.StreakState) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		INSERT INTO user_streaks (
			user_id,
			login_streak_current, login_streak_longest, last_login_date,
			task_streak_current, task_streak_longest, last_task_date,
			total_login_days, total_tasks_completed,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4::date, $5, $6, $7::date, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			login_streak_current  = EXCLUDED.login_streak_current,
			login_streak_longest  = EXCLUDED.login_streak_longest,
			last_login_date       = EXCLUDED.last_login_date,
			task_streak_current   = EXCLUDED.task_streak_current,
			task_streak_longest   = EXCLUDED.task_streak_longest,
			last_task_date        = EXCLUDED.last_task_date,
			total_login_days      = EXCLUDED.total_login_days,
			total_tasks_completed = EXCLUDED.total_tasks_completed,
			updated_at            = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		state.UserID,
		state.LoginStreakCurrent,
		state.LoginStreakLongest,
		state.LastLoginDate,
		state.TaskStreakCurrent,
		state.TaskStreakLongest,
		state.LastTaskDate,
		state.TotalLoginDays,
		state.TotalTasksCompleted,
		state.CreatedAt,
		state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: save streak failed: %w", err)
	}
	return nil
}

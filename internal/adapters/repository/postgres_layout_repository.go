package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

var _ domain.LayoutRepository = (*PostgresLayoutRepository)(nil)

type PostgresLayoutRepository struct {
	db *sqlx.DB
}

func NewPostgresLayoutRepository(db *sqlx.DB) *PostgresLayoutRepository {
	return &PostgresLayoutRepository{db: db}
}

func (r *PostgresLayoutRepository) Get(ctx context.Context, userID string) (*domain.WidgetLayout, error) {
	query := `
		SELECT user_id, widget_order, hidden_widgets, created_at, updated_at
		FROM dashboard_layouts
		WHERE user_id = $1`

	var l domain.WidgetLayout
	err := r.db.QueryRowxContext(ctx, query, userID).Scan(
		&l.UserID,
		pq.Array(&l.WidgetOrder),
		pq.Array(&l.HiddenWidgets),
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("repository: get layout failed: %w", err)
	}
	return &l, nil
}

// Save upserts the whole document.
func (r *PostgresLayoutRepository) Save(ctx context.Context, l *domain.WidgetLayout) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		INSERT INTO dashboard_layouts (user_id, widget_order, hidden_widgets, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			widget_order   = EXCLUDED.widget_order,
			hidden_widgets = EXCLUDED.hidden_widgets,
			updated_at     = EXCLUDED.updated_at`

	hidden := l.HiddenWidgets
	if hidden == nil {
		hidden = []string{}
	}

	_, err := r.db.ExecContext(ctx, query,
		l.UserID,
		pq.Array(l.WidgetOrder),
		pq.Array(hidden),
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: save layout failed: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

var _ domain.TradelineRepository = (*PostgresTradelineRepository)(nil)

type PostgresTradelineRepository struct {
	db *sqlx.DB
}

func NewPostgresTradelineRepository(db *sqlx.DB) *PostgresTradelineRepository {
	return &PostgresTradelineRepository{db: db}
}

func (r *PostgresTradelineRepository) Create(ctx context.Context, t *domain.Tradeline) error {
	query := `
		INSERT INTO tradelines (id, user_id, vendor_name, credit_limit, reports_to, opened_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.VendorName,
		t.CreditLimit,
		pq.Array(t.ReportsTo),
		t.OpenedAt,
		t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("repository: tradeline %s already exists: %w", t.ID, domain.ErrInvalidTradeline)
		}
		return fmt.Errorf("repository: create tradeline failed: %w", err)
	}
	return nil
}

func (r *PostgresTradelineRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Tradeline, error) {
	query := `
		SELECT id, user_id, vendor_name, credit_limit, reports_to, opened_at, created_at
		FROM tradelines
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: list tradelines failed: %w", err)
	}
	defer rows.Close()

	out := []*domain.Tradeline{}
	for rows.Next() {
		var t domain.Tradeline
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.VendorName,
			&t.CreditLimit,
			pq.Array(&t.ReportsTo),
			&t.OpenedAt,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("repository: scan tradeline failed: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *PostgresTradelineRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tradelines WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("repository: count tradelines failed: %w", err)
	}
	return n, nil
}

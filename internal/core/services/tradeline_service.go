package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/google/uuid"
)

type TradelineService struct {
	repo   domain.TradelineRepository
	checks AchievementScheduler
}

func NewTradelineService(repo domain.TradelineRepository, checks AchievementScheduler) *TradelineService {
	return &TradelineService{
		repo:   repo,
		checks: checks,
	}
}

type AddTradelineInput struct {
	UserID      string
	VendorName  string
	CreditLimit float64
	ReportsTo   []string
	OpenedAt    *time.Time
}

func (s *TradelineService) Add(ctx context.Context, input AddTradelineInput) (*domain.Tradeline, error) {
	t, err := domain.NewTradeline(input.UserID, input.VendorName, input.CreditLimit, input.ReportsTo, input.OpenedAt)
	if err != nil {
		return nil, err
	}
	t.ID = uuid.NewString()

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("tradeline service: create: %w", err)
	}
	if s.checks != nil {
		s.checks.Enqueue(input.UserID)
	}
	return t, nil
}

func (s *TradelineService) List(ctx context.Context, userID string) ([]*domain.Tradeline, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *TradelineService) Count(ctx context.Context, userID string) (int, error) {
	return s.repo.CountByUser(ctx, userID)
}

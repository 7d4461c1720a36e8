package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

// BillingProvider is the set of hosted billing functions.
type BillingProvider interface {
	CheckAddons(ctx context.Context, accessToken string) (*domain.Addons, error)
	CreateCheckout(ctx context.Context, accessToken, priceID string) (*domain.RedirectURL, error)
	CustomerPortal(ctx context.Context, accessToken string) (*domain.RedirectURL, error)
}

type BillingService struct {
	provider BillingProvider
	subs     *SubscriptionCache
}

// NewBillingService invalidates subs for users who start a billing flow.
func NewBillingService(provider BillingProvider, subs *SubscriptionCache) *BillingService {
	return &BillingService{provider: provider, subs: subs}
}

func (s *BillingService) Addons(ctx context.Context, accessToken string) (*domain.Addons, error) {
	addons, err := s.provider.CheckAddons(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("billing service: addons: %w", err)
	}
	return addons, nil
}

func (s *BillingService) Checkout(ctx context.Context, userID, accessToken, priceID string) (*domain.RedirectURL, error) {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return nil, domain.ErrMissingPrice
	}
	url, err := s.provider.CreateCheckout(ctx, accessToken, priceID)
	if err != nil {
		return nil, fmt.Errorf("billing service: checkout: %w", err)
	}
	s.invalidate(userID)
	return url, nil
}

func (s *BillingService) Portal(ctx context.Context, userID, accessToken string) (*domain.RedirectURL, error) {
	url, err := s.provider.CustomerPortal(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("billing service: portal: %w", err)
	}
	s.invalidate(userID)
	return url, nil
}

func (s *BillingService) invalidate(userID string) {
	if s.subs != nil {
		s.subs.Invalidate(userID)
	}
}

package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBillingProvider struct {
	mock.Mock
}

func (m *MockBillingProvider) CheckAddons(ctx context.Context, accessToken string) (*domain.Addons, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Addons), args.Error(1)
}

func (m *MockBillingProvider) CreateCheckout(ctx context.Context, accessToken, priceID string) (*domain.RedirectURL, error) {
	args := m.Called(ctx, accessToken, priceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RedirectURL), args.Error(1)
}

func (m *MockBillingProvider) CustomerPortal(ctx context.Context, accessToken string) (*domain.RedirectURL, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RedirectURL), args.Error(1)
}

func TestBillingService(t *testing.T) {
	ctx := context.Background()
	provider := new(MockBillingProvider)
	cache := services.NewSubscriptionCache(0)
	svc := services.NewBillingService(provider, cache)

	provider.On("CheckAddons", mock.Anything, "tok").Return(&domain.Addons{Addons: []string{"credit_monitoring"}}, nil)
	provider.On("CreateCheckout", mock.Anything, "tok", "price_build").Return(&domain.RedirectURL{URL: "https://pay.example/session"}, nil)
	provider.On("CustomerPortal", mock.Anything, "tok").Return(nil, errors.New("no customer"))

	addons, err := svc.Addons(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, addons.Has("credit_monitoring"))

	cache.Set("u1", domain.Subscription{Tier: domain.TierStart})
	url, err := svc.Checkout(ctx, "u1", "tok", " price_build ")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session", url.URL)
	assert.Equal(t, 0, cache.Len(), "starting checkout invalidates the cached tier")

	_, err = svc.Checkout(ctx, "u1", "tok", "")
	assert.ErrorIs(t, err, domain.ErrMissingPrice)

	_, err = svc.Portal(ctx, "u1", "tok")
	assert.Error(t, err)

	provider.AssertExpectations(t)
}

package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

func TestBilling(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	t.Run("Success: Addons of the signed-in user", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/billing/addons", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		addons := decode[domain.Addons](t, w)
		assert.True(t, addons.Has("credit_boost"))
	})

	t.Run("Success: Checkout returns a redirect", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/v1/billing/checkout", token, map[string]any{"price_id": "price_scale_monthly"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, decode[domain.RedirectURL](t, w).URL, "price_scale_monthly")
	})

	t.Run("Fail: 400 Checkout without price", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/v1/billing/checkout", token, map[string]any{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrMissingPrice.Error())
	})

	t.Run("Success: Portal", func(t *testing.T) {
		w := app.do(http.MethodPost, "/api/v1/billing/portal", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decode[domain.RedirectURL](t, w).URL)
	})

	t.Run("Fail: 401 Provider session gone", func(t *testing.T) {
		app.mock.MockLogout()

		w := app.do(http.MethodGet, "/api/v1/billing/addons", token, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/neko-engine/internal/adapters/backend"
	"github.com/comitanigiacomo/neko-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/neko-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/neko-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
	"github.com/comitanigiacomo/neko-engine/internal/testsupport/mockapi"
)

const (
	testSecret = "handler-test-secret"
	testIssuer = "neko-test"
)

type testApp struct {
	router *gin.Engine
	mock   *mockapi.Interceptor
	store  *repository.InMemoryStore
	tokens *services.TokenService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()

	mock, err := mockapi.New(mockapi.Options{Secret: testSecret, Issuer: testIssuer})
	require.NoError(t, err)
	client, err := backend.New(log, backend.Config{
		URL:       "https://project.backend.test",
		AnonKey:   "anon",
		Timeout:   2 * time.Second,
		Transport: mock,
	})
	require.NoError(t, err)

	store := repository.NewInMemoryStore()
	tokens := services.NewTokenService(testSecret, testIssuer, time.Hour)

	streaks := services.NewStreakService(store.Streaks(), nil, log, time.UTC)
	progress := services.NewProgressService(store.Progress(), streaks, nil, nil, log)
	tradelines := services.NewTradelineService(store.Tradelines(), nil)
	achievements := services.NewAchievementService(
		domain.DefaultCatalog(),
		domain.NewEvaluator(domain.DefaultSpecials(domain.EarlyAdopterCutoff)),
		services.AchievementDeps{
			Earned:     store.Achievements(),
			Progress:   store.Progress(),
			Tradelines: store.Tradelines(),
			Streaks:    store.Streaks(),
			Profiles:   store.Profiles(),
		},
		log,
	)
	layouts := services.NewLayoutService(store.Layouts(), nil, log)
	sessions := services.NewSessionService(
		client,
		cache.NewMemoryTokenStore(),
		cache.NewMemoryTokenStore(),
		store.Profiles(),
		streaks,
		services.DefaultSessionConfig(),
		log,
	)
	billing := services.NewBillingService(client, sessions.Subscriptions())

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		SessionHandler:     adapterHTTP.NewSessionHandler(sessions),
		ProgressHandler:    adapterHTTP.NewProgressHandler(progress),
		StreakHandler:      adapterHTTP.NewStreakHandler(streaks),
		AchievementHandler: adapterHTTP.NewAchievementHandler(achievements),
		TradelineHandler:   adapterHTTP.NewTradelineHandler(tradelines),
		LayoutHandler:      adapterHTTP.NewLayoutHandler(layouts),
		BillingHandler:     adapterHTTP.NewBillingHandler(billing),
		TokenService:       tokens,
		Logger:             log,
		StartTime:          time.Now(),
	})

	return &testApp{router: router, mock: mock, store: store, tokens: tokens}
}

// do sends a JSON request; token may be empty.
func (a *testApp) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch v := body.(type) {
		case string:
			buf.WriteString(v)
		default:
			_ = json.NewEncoder(&buf).Encode(v)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// login signs the default test user in and returns the access token.
func (a *testApp) login(t *testing.T) string {
	t.Helper()
	w := a.do(http.MethodPost, "/api/v1/session/login", "", map[string]any{
		"email":    "test@neko.dev",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Session struct {
			AccessToken string `json:"access_token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Session.AccessToken)
	return res.Session.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "in-memory", body["database"])
	assert.Equal(t, "disabled", body["redis"])
	assert.NotEmpty(t, body["uptime"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	paths := []string{
		"/api/v1/session",
		"/api/v1/progress",
		"/api/v1/streaks",
		"/api/v1/achievements",
		"/api/v1/tradelines",
		"/api/v1/dashboard/layout",
		"/api/v1/billing/addons",
	}
	for _, p := range paths {
		w := app.do(http.MethodGet, p, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, p)
	}
}

package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

func TestSaveStep(t *testing.T) {
	t.Run("Success: 200 OK completes step and counts a task", func(t *testing.T) {
		app := newTestApp(t)
		token := app.login(t)

		w := app.do(http.MethodPut, "/api/v1/progress/business_starter/create_llc", token, map[string]any{
			"completed": true,
			"notes":     "Filed in Delaware",
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		rec := decode[domain.ProgressRecord](t, w)
		assert.True(t, rec.Completed)
		assert.NotNil(t, rec.CompletedAt)
		require.NotNil(t, rec.Notes)
		assert.Equal(t, "Filed in Delaware", *rec.Notes)

		w = app.do(http.MethodGet, "/api/v1/streaks", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total_tasks_completed":1`)
		assert.Contains(t, w.Body.String(), `"task_streak_current":1`)
	})

	t.Run("Fail: 400 Unknown step", func(t *testing.T) {
		app := newTestApp(t)
		token := app.login(t)

		w := app.do(http.MethodPut, "/api/v1/progress/business_starter/buy_yacht", token, map[string]any{"completed": true})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrUnknownStep.Error())
	})

	t.Run("Fail: 400 Missing completed flag", func(t *testing.T) {
		app := newTestApp(t)
		token := app.login(t)

		w := app.do(http.MethodPut, "/api/v1/progress/business_starter/create_llc", token, `{"notes": "x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProgressReads(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	for _, step := range []string{"create_llc", "get_ein"} {
		w := app.do(http.MethodPut, "/api/v1/progress/business_starter/"+step, token, map[string]any{"completed": true})
		require.Equal(t, http.StatusOK, w.Code)
	}

	t.Run("Success: List", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/progress", token, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]domain.ProgressRecord](t, w), 2)
	})

	t.Run("Success: Module view", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/progress/business_starter", token, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		view := decode[domain.ModuleProgressView](t, w)
		assert.Equal(t, 2, view.Completed)
		assert.Equal(t, 5, view.Total)
		assert.Equal(t, 40, view.Percentage)
	})

	t.Run("Success: Next step follows curated order", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/progress/business_starter/next", token, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"next_step":"open_business_bank"`)
		assert.Contains(t, w.Body.String(), `"complete":false`)
	})

	t.Run("Success: Overview", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/progress/overview", token, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total_completed":2`)
		assert.Contains(t, w.Body.String(), `"overall_percentage":13`)
	})

	t.Run("Fail: 404 Unknown module", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/progress/space_program", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = app.do(http.MethodGet, "/api/v1/progress/space_program/next", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

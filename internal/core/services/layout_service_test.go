package services_test

import (
	"context"
	"testing"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLayoutService(repo *fakeLayoutRepo, n *recordingNotifier) *services.LayoutService {
	svc := services.NewLayoutService(repo, n, logger.Nop())
	svc.SetClock(fixedClock(may10))
	return svc
}

func TestLayoutService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Default layout is created and stored", func(t *testing.T) {
		repo := newFakeLayoutRepo()
		svc := newLayoutService(repo, &recordingNotifier{})

		l, err := svc.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultWidgetOrder(), l.WidgetOrder)
		assert.Equal(t, 1, repo.saves)
	})

	t.Run("Success: Persisted layout is merged with the catalog", func(t *testing.T) {
		repo := newFakeLayoutRepo()
		repo.rows["u1"] = &domain.WidgetLayout{
			UserID:        "u1",
			WidgetOrder:   []string{"level", "welcome", "retired_widget"},
			HiddenWidgets: []string{"retired_widget", "level"},
		}
		svc := newLayoutService(repo, &recordingNotifier{})

		l, err := svc.Get(ctx, "u1")
		require.NoError(t, err)

		want := []string{"level", "welcome", "progress_overview", "next_steps", "streaks", "achievements", "tradelines", "resources", "announcements"}
		if diff := cmp.Diff(want, l.WidgetOrder); diff != "" {
			t.Errorf("merged order mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, []string{"level"}, l.HiddenWidgets)
		assert.Equal(t, 1, repo.saves)

		_, err = svc.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, repo.saves, "an already merged layout is not rewritten")
	})
}

func TestLayoutService_Mutations(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLayoutRepo()
	n := &recordingNotifier{}
	svc := newLayoutService(repo, n)

	l, err := svc.Reorder(ctx, "u1", []string{"achievements", "welcome", "bogus"})
	require.NoError(t, err)
	assert.Equal(t, []string{"achievements", "welcome"}, l.WidgetOrder[:2])
	assert.Equal(t, l.WidgetOrder, repo.rows["u1"].WidgetOrder)

	l, msg, err := svc.Toggle(ctx, "u1", "welcome")
	require.NoError(t, err)
	assert.Equal(t, "Welcome widget is now hidden", msg)
	assert.Equal(t, []string{"welcome"}, repo.rows["u1"].HiddenWidgets)
	assert.NotContains(t, l.Visible(), "welcome")

	_, msg, err = svc.Toggle(ctx, "u1", "welcome")
	require.NoError(t, err)
	assert.Equal(t, "Welcome widget is now shown", msg)
	assert.Len(t, n.byKind(domain.NotifyLayoutUpdated), 2)

	_, _, err = svc.Toggle(ctx, "u1", "bogus")
	assert.ErrorIs(t, err, domain.ErrUnknownWidget)

	l, err = svc.Reset(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultWidgetOrder(), l.WidgetOrder)
	assert.Empty(t, l.HiddenWidgets)

	visible, err := svc.Visible(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultWidgetOrder(), visible)
}

func TestLayoutService_FailedSaveKeepsStoredLayout(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLayoutRepo()
	n := &recordingNotifier{}
	svc := newLayoutService(repo, n)

	_, err := svc.Get(ctx, "u1")
	require.NoError(t, err)

	repo.simulateError = errStorage
	_, _, err = svc.Toggle(ctx, "u1", "streaks")
	assert.ErrorIs(t, err, errStorage)
	assert.Empty(t, repo.rows["u1"].HiddenWidgets)
	assert.Equal(t, []domain.NotificationKind{domain.NotifySaveFailed}, n.kinds())
}

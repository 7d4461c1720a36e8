package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_OpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "neko.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.PingContext(context.Background()))
	require.NoError(t, s.Close())

	again, err := Open(path)
	require.NoError(t, err, "migrations must be re-runnable")
	require.NoError(t, again.Close())
}

func TestStore_Progress(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Progress()

	t.Run("Success: Upsert keeps the first id", func(t *testing.T) {
		rec, err := domain.NewProgressRecord("u1", domain.ModuleBusinessCredit, "register_duns")
		require.NoError(t, err)
		rec.SetCompleted(true, time.Now())
		notes := "D-U-N-S requested"
		rec.Notes = &notes
		rec.Metadata = domain.Metadata{"number": "123"}
		require.NoError(t, repo.Upsert(ctx, rec))
		firstID := rec.ID

		again, _ := domain.NewProgressRecord("u1", domain.ModuleBusinessCredit, "register_duns")
		again.SetCompleted(false, time.Now())
		require.NoError(t, repo.Upsert(ctx, again))
		assert.Equal(t, firstID, again.ID)

		got, err := repo.Get(ctx, "u1", domain.ModuleBusinessCredit, "register_duns")
		require.NoError(t, err)
		assert.False(t, got.Completed)
		assert.Nil(t, got.CompletedAt)

		list, err := repo.ListByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("Error: Missing step", func(t *testing.T) {
		_, err := repo.Get(ctx, "u1", domain.ModulePersonalBrand, "launch_website")
		assert.ErrorIs(t, err, domain.ErrProgressNotFound)
	})
}

func TestStore_Streaks(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Streaks()

	_, err := repo.Get(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrStreakNotFound)

	st := domain.NewStreakState("u1")
	st.RecordLogin("2025-02-27")
	require.NoError(t, repo.Save(ctx, st))
	st.RecordLogin("2025-02-28")
	st.RecordTask("2025-02-28")
	require.NoError(t, repo.Save(ctx, st))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.LoginStreakCurrent)
	assert.Equal(t, "2025-02-28", *got.LastTaskDate)
}

func TestStore_Achievements(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Achievements()

	e := &domain.EarnedAchievement{UserID: "u1", AchievementID: "first_step", EarnedAt: time.Now().UTC()}
	ok, err := repo.Insert(ctx, e)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Insert(ctx, &domain.EarnedAchievement{UserID: "u1", AchievementID: "first_step", EarnedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.False(t, ok)

	earned, err := repo.ListEarned(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, earned, 1)
}

func TestStore_TradelinesLayoutsProfiles(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	t.Run("Success: Tradelines", func(t *testing.T) {
		tl, err := domain.NewTradeline("u1", "Crown Office", 500, []string{"Equifax", "Experian"}, nil)
		require.NoError(t, err)
		tl.ID = "t1"
		require.NoError(t, s.Tradelines().Create(ctx, tl))

		list, err := s.Tradelines().ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, []string{"equifax", "experian"}, list[0].ReportsTo)

		n, err := s.Tradelines().CountByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("Success: Layouts", func(t *testing.T) {
		l := domain.NewWidgetLayout("u1")
		l.Reorder([]string{"level", "welcome"}, time.Now())
		require.NoError(t, s.Layouts().Save(ctx, l))

		got, err := s.Layouts().Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, l.WidgetOrder, got.WidgetOrder)
		assert.Empty(t, got.HiddenWidgets)
	})

	t.Run("Success: Profiles keep the stored name", func(t *testing.T) {
		name := "Katherine"
		require.NoError(t, s.Profiles().Upsert(ctx, &domain.Profile{
			ID: "u1", Email: "k@example.com", FullName: &name,
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}))

		p := &domain.Profile{ID: "u1", Email: "kj@example.com", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
		require.NoError(t, s.Profiles().Upsert(ctx, p))
		require.NotNil(t, p.FullName)
		assert.Equal(t, name, *p.FullName)

		got, err := s.Profiles().Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "kj@example.com", got.Email)
	})
}

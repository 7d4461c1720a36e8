package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressFixture struct {
	svc       *services.ProgressService
	repo      *fakeProgressRepo
	streaks   *fakeStreakRepo
	scheduler *recordingScheduler
	notifier  *recordingNotifier
}

func newProgressFixture() *progressFixture {
	f := &progressFixture{
		repo:      newFakeProgressRepo(),
		streaks:   newFakeStreakRepo(),
		scheduler: &recordingScheduler{},
		notifier:  &recordingNotifier{},
	}
	streakSvc := newStreakService(f.streaks, f.notifier, may10)
	f.svc = services.NewProgressService(f.repo, streakSvc, f.scheduler, f.notifier, logger.Nop())
	f.svc.SetClock(fixedClock(may10))
	return f
}

func TestProgressService_SaveStep(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Completing a step records a task and schedules a check", func(t *testing.T) {
		f := newProgressFixture()

		rec, err := f.svc.SaveStep(ctx, services.SaveStepInput{
			UserID: "u1", Module: domain.ModuleBusinessStarter, Step: "create_llc", Completed: true,
			Notes: ptr("filed in Delaware"),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.True(t, rec.Completed)
		require.NotNil(t, rec.CompletedAt)
		assert.Equal(t, may10, *rec.CompletedAt)
		assert.Equal(t, "filed in Delaware", *rec.Notes)

		assert.Equal(t, 1, f.streaks.rows["u1"].TotalTasksCompleted)
		assert.Equal(t, []string{"u1"}, f.scheduler.users)
	})

	t.Run("Success: Re-saving a completed step is not another task", func(t *testing.T) {
		f := newProgressFixture()
		in := services.SaveStepInput{UserID: "u1", Module: domain.ModuleBusinessStarter, Step: "get_ein", Completed: true}

		first, err := f.svc.SaveStep(ctx, in)
		require.NoError(t, err)
		second, err := f.svc.SaveStep(ctx, in)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1, f.streaks.rows["u1"].TotalTasksCompleted)
		assert.Len(t, f.scheduler.users, 2)
	})

	t.Run("Success: Un-completing clears the timestamp", func(t *testing.T) {
		f := newProgressFixture()
		_, _ = f.svc.SaveStep(ctx, services.SaveStepInput{UserID: "u1", Module: domain.ModulePersonalBrand, Step: "create_logo", Completed: true})

		rec, err := f.svc.SaveStep(ctx, services.SaveStepInput{UserID: "u1", Module: domain.ModulePersonalBrand, Step: "create_logo", Completed: false})
		require.NoError(t, err)
		assert.False(t, rec.Completed)
		assert.Nil(t, rec.CompletedAt)
	})

	t.Run("Error: Unknown step is rejected without writes", func(t *testing.T) {
		f := newProgressFixture()
		_, err := f.svc.SaveStep(ctx, services.SaveStepInput{UserID: "u1", Module: domain.ModuleBusinessStarter, Step: "buy_yacht", Completed: true})
		assert.ErrorIs(t, err, domain.ErrUnknownStep)
		assert.Empty(t, f.repo.rows)
		assert.Empty(t, f.scheduler.users)
	})

	t.Run("Error: Storage failure emits a toast and no side effects", func(t *testing.T) {
		f := newProgressFixture()
		f.repo.simulateError = errStorage

		_, err := f.svc.SaveStep(ctx, services.SaveStepInput{UserID: "u1", Module: domain.ModuleBusinessStarter, Step: "create_llc", Completed: true})
		assert.ErrorIs(t, err, errStorage)
		assert.Equal(t, []domain.NotificationKind{domain.NotifySaveFailed}, f.notifier.kinds())
		assert.Empty(t, f.streaks.rows)
		assert.Empty(t, f.scheduler.users)
	})
}

func TestProgressService_Reads(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture()
	f.repo.complete("u1", domain.ModuleBusinessStarter, "create_llc", "get_business_address")
	f.repo.complete("u2", domain.ModuleBusinessStarter, "get_ein")

	step, ok, err := f.svc.NextStep(ctx, "u1", domain.ModuleBusinessStarter)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "get_ein", step)

	_, _, err = f.svc.NextStep(ctx, "u1", "cooking")
	assert.ErrorIs(t, err, domain.ErrUnknownModule)

	view, err := f.svc.ModuleProgress(ctx, "u1", domain.ModuleBusinessStarter)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Completed)
	assert.Equal(t, 40, view.Percentage)

	overview, err := f.svc.Overview(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, overview.Modules, 3)
	assert.Equal(t, 2, overview.TotalCompleted)
	assert.Equal(t, 13, overview.OverallPercentage)
	assert.Equal(t, "get_ein", overview.NextSteps[domain.ModuleBusinessStarter])
	assert.Equal(t, "register_duns", overview.NextSteps[domain.ModuleBusinessCredit])
}

func TestProgressService_ConcurrentSaves(t *testing.T) {
	f := newProgressFixture()
	ctx := context.Background()
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = f.svc.SaveStep(ctx, services.SaveStepInput{UserID: "u1", Module: domain.ModuleBusinessCredit, Step: "register_duns", Completed: true})
		}()
	}
	for i := 0; i < 10; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("saves did not finish")
		}
	}
	assert.Len(t, f.repo.rows, 1)
	assert.Equal(t, 1, f.streaks.rows["u1"].TotalTasksCompleted)
}

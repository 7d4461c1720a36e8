package domain_test

import (
	"testing"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completed(module domain.ModuleID, step string) *domain.ProgressRecord {
	at := time.Now().UTC()
	return &domain.ProgressRecord{UserID: "u1", Module: module, Step: step, Completed: true, CompletedAt: &at}
}

func pending(module domain.ModuleID, step string) *domain.ProgressRecord {
	return &domain.ProgressRecord{UserID: "u1", Module: module, Step: step}
}

func TestNewProgressRecord(t *testing.T) {
	t.Run("Success: Valid step", func(t *testing.T) {
		r, err := domain.NewProgressRecord("u1", domain.ModuleBusinessStarter, "get_ein")
		require.NoError(t, err)
		assert.False(t, r.Completed)
		assert.Nil(t, r.CompletedAt)
		assert.NotNil(t, r.Metadata)
	})

	t.Run("Error: Unknown module", func(t *testing.T) {
		_, err := domain.NewProgressRecord("u1", "cooking", "get_ein")
		assert.ErrorIs(t, err, domain.ErrUnknownModule)
	})

	t.Run("Error: Unknown step", func(t *testing.T) {
		_, err := domain.NewProgressRecord("u1", domain.ModuleBusinessStarter, "bake_bread")
		assert.ErrorIs(t, err, domain.ErrUnknownStep)
	})

	t.Run("Error: Missing user", func(t *testing.T) {
		_, err := domain.NewProgressRecord(" ", domain.ModuleBusinessStarter, "get_ein")
		assert.Error(t, err)
	})
}

func TestProgressRecord_SetCompleted(t *testing.T) {
	r, _ := domain.NewProgressRecord("u1", domain.ModulePersonalBrand, "create_logo")
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	r.SetCompleted(true, first)
	require.NotNil(t, r.CompletedAt)
	assert.True(t, r.Completed)
	assert.Equal(t, first, *r.CompletedAt)

	r.SetCompleted(true, first.Add(time.Hour))
	assert.Equal(t, first, *r.CompletedAt, "re-completing must keep the original timestamp")

	r.SetCompleted(false, first.Add(2*time.Hour))
	assert.False(t, r.Completed)
	assert.Nil(t, r.CompletedAt)
}

func TestProgressSet_ModuleProgress(t *testing.T) {
	set := domain.ProgressSet{
		completed(domain.ModuleBusinessStarter, "create_llc"),
		completed(domain.ModuleBusinessStarter, "get_ein"),
		pending(domain.ModuleBusinessStarter, "open_business_bank"),
		completed(domain.ModuleBusinessCredit, "register_duns"),
	}

	view := set.ModuleProgress(domain.ModuleBusinessStarter)
	assert.Equal(t, 2, view.Completed)
	assert.Equal(t, 5, view.Total)
	assert.Equal(t, 40, view.Percentage)
	assert.Len(t, view.Steps, 3)

	unknown := set.ModuleProgress("cooking")
	assert.Equal(t, 0, unknown.Total)
	assert.Equal(t, 0, unknown.Percentage)

	all := set.AllModulesProgress()
	require.Len(t, all, 3)
	for _, v := range all {
		assert.GreaterOrEqual(t, v.Percentage, 0)
		assert.LessOrEqual(t, v.Percentage, 100)
	}
	assert.Equal(t, 17, all[1].Percentage)
}

func TestProgressSet_NextStep(t *testing.T) {
	t.Run("Success: Follows declared order, not completion order", func(t *testing.T) {
		set := domain.ProgressSet{
			completed(domain.ModuleBusinessStarter, "create_llc"),
			completed(domain.ModuleBusinessStarter, "get_business_address"),
		}
		step, ok := set.NextStep(domain.ModuleBusinessStarter)
		assert.True(t, ok)
		assert.Equal(t, "get_ein", step)
	})

	t.Run("Success: Pending record counts as incomplete", func(t *testing.T) {
		set := domain.ProgressSet{pending(domain.ModulePersonalBrand, "define_brand_identity")}
		step, ok := set.NextStep(domain.ModulePersonalBrand)
		assert.True(t, ok)
		assert.Equal(t, "define_brand_identity", step)
	})

	t.Run("Success: Nothing left", func(t *testing.T) {
		var set domain.ProgressSet
		for _, s := range domain.StepOrder(domain.ModulePersonalBrand) {
			set = append(set, completed(domain.ModulePersonalBrand, s))
		}
		_, ok := set.NextStep(domain.ModulePersonalBrand)
		assert.False(t, ok)
	})

	t.Run("Error: Unknown module", func(t *testing.T) {
		_, ok := domain.ProgressSet{}.NextStep("cooking")
		assert.False(t, ok)
	})
}

func TestProgressSet_Counts(t *testing.T) {
	set := domain.ProgressSet{
		completed(domain.ModuleBusinessStarter, "create_llc"),
		completed(domain.ModulePersonalBrand, "create_logo"),
		pending(domain.ModuleBusinessCredit, "register_duns"),
		nil,
	}

	assert.Equal(t, 2, set.TotalCompleted())
	assert.Equal(t, []domain.ModuleID{domain.ModuleBusinessStarter, domain.ModulePersonalBrand}, set.StartedModules())
	assert.Equal(t, 13, set.OverallPercentage())
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{5, 5, 100},
		{7, 5, 100},
		{-1, 5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.Percentage(tt.part, tt.total), "%d/%d", tt.part, tt.total)
	}
}

func TestMetadata_Scan(t *testing.T) {
	var m domain.Metadata
	require.NoError(t, m.Scan([]byte(`{"source":"web"}`)))
	assert.Equal(t, "web", m["source"])

	require.NoError(t, m.Scan(nil))
	assert.Empty(t, m)

	assert.Error(t, m.Scan(42))
}

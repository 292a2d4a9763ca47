package supply_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/quartermaster/pkg/supply"
)

var evalTime = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func TestEvaluate_GreenOverCapacity(t *testing.T) {
	r, err := supply.Evaluate(supply.Snapshot{
		Name:             "First Army",
		CurrentSupplies:  "150",
		DailyConsumption: 5.0,
		TotalCarried:     "420",
		CarryingCapacity: "400",
	}, evalTime, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "145", r.Transition.New.String())
	assert.Equal(t, int64(29), r.Classification.DaysRemaining)
	assert.Equal(t, supply.TierGreen, r.Classification.Tier)
	assert.Equal(t, supply.VariantNormal, r.Classification.Variant)
	assert.True(t, r.Capacity.OverCapacity)
	assert.Equal(t, "415", r.Capacity.Adjusted.String())
	assert.True(t, r.Transition.ShouldPersist())
	assert.Equal(t, time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC), r.Classification.ProjectedZeroDate)
}

func TestEvaluate_Red(t *testing.T) {
	r, err := supply.Evaluate(supply.Snapshot{
		Name:             "Second Army",
		CurrentSupplies:  10,
		DailyConsumption: 5,
		TotalCarried:     100,
		CarryingCapacity: 400,
	}, evalTime, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "5", r.Transition.New.String())
	assert.Equal(t, int64(1), r.Classification.DaysRemaining)
	assert.Equal(t, supply.TierRed, r.Classification.Tier)
}

func TestEvaluate_HitsZero(t *testing.T) {
	r, err := supply.Evaluate(supply.Snapshot{
		Name:             "Third Army",
		CurrentSupplies:  3,
		DailyConsumption: 5,
		TotalCarried:     50,
		CarryingCapacity: 400,
	}, evalTime, time.UTC)
	require.NoError(t, err)

	assert.True(t, r.Transition.New.IsZero())
	assert.True(t, r.Transition.HitZeroToday)
	assert.Equal(t, supply.VariantZeroSupplies, r.Classification.Variant)
	assert.Equal(t, "3", r.Transition.Consumed.String())
	assert.Equal(t, "47", r.Capacity.Adjusted.String())
}

func TestEvaluate_RestingAtZero(t *testing.T) {
	r, err := supply.Evaluate(supply.Snapshot{
		Name:             "Fourth Army",
		CurrentSupplies:  0,
		DailyConsumption: 5,
		TotalCarried:     0,
		CarryingCapacity: 400,
		Resting:          "yes",
	}, evalTime, time.UTC)
	require.NoError(t, err)

	assert.True(t, r.Transition.New.IsZero())
	assert.Equal(t, supply.VariantNormal, r.Classification.Variant)
	assert.NotEqual(t, supply.VariantZeroSupplies, r.Classification.Variant)
	assert.False(t, r.Transition.ShouldPersist())
	assert.Equal(t, "Fourth Army (Resting)", r.Classification.DisplayName)
}

func TestEvaluate_Errors(t *testing.T) {
	base := supply.Snapshot{
		Name:             "Broken",
		CurrentSupplies:  "100",
		DailyConsumption: "5",
		TotalCarried:     "100",
		CarryingCapacity: "200",
	}

	t.Run("invalid supplies", func(t *testing.T) {
		s := base
		s.CurrentSupplies = "abc"
		_, err := supply.Evaluate(s, evalTime, time.UTC)
		assert.ErrorIs(t, err, supply.ErrInvalidNumericValue)
		assert.Contains(t, err.Error(), "current supplies")
	})

	t.Run("missing capacity", func(t *testing.T) {
		s := base
		s.CarryingCapacity = nil
		_, err := supply.Evaluate(s, evalTime, time.UTC)
		assert.ErrorIs(t, err, supply.ErrMissingCellData)
		assert.Contains(t, err.Error(), "carrying capacity")
	})

	t.Run("zero consumption", func(t *testing.T) {
		s := base
		s.DailyConsumption = "0"
		_, err := supply.Evaluate(s, evalTime, time.UTC)
		assert.ErrorIs(t, err, supply.ErrNonPositiveConsumption)
	})

	t.Run("bad metric is not an error", func(t *testing.T) {
		s := base
		s.Metrics = map[supply.MetricKey]any{supply.MetricSupplyShips: "a few"}
		r, err := supply.Evaluate(s, evalTime, time.UTC)
		require.NoError(t, err)
		m, ok := r.Metrics.SupplyShips.Get()
		require.True(t, ok)
		assert.Equal(t, "a few", m.Text)
	})
}

func TestEvaluate_Stateless(t *testing.T) {
	s := supply.Snapshot{
		Name:             "Repeat",
		CurrentSupplies:  "20",
		DailyConsumption: "5",
		TotalCarried:     "20",
		CarryingCapacity: "10",
	}
	first, err := supply.Evaluate(s, evalTime, time.UTC)
	require.NoError(t, err)
	second, err := supply.Evaluate(s, evalTime, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

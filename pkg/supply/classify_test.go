package supply_test

import (
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/quartermaster/pkg/supply"
)

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		days     int64
		expected supply.Tier
	}{
		{0, supply.TierCriticalZero},
		{1, supply.TierRed},
		{3, supply.TierRed},
		{4, supply.TierOrange},
		{7, supply.TierOrange},
		{8, supply.TierYellow},
		{14, supply.TierYellow},
		{15, supply.TierGreen},
		{365, supply.TierGreen},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, supply.TierFor(tt.days, false), "days %d", tt.days)
	}
}

func TestTierFor_RestingAtZero(t *testing.T) {
	assert.Equal(t, supply.TierRed, supply.TierFor(0, true))
	assert.Equal(t, supply.TierGreen, supply.TierFor(20, true))
}

func TestTierFor_Contiguous(t *testing.T) {
	valid := map[supply.Tier]bool{
		supply.TierGreen: true, supply.TierYellow: true, supply.TierOrange: true,
		supply.TierRed: true, supply.TierCriticalZero: true,
	}
	prev := supply.TierCriticalZero
	order := map[supply.Tier]int{
		supply.TierCriticalZero: 0, supply.TierRed: 1, supply.TierOrange: 2,
		supply.TierYellow: 3, supply.TierGreen: 4,
	}
	for d := int64(0); d <= 60; d++ {
		tier := supply.TierFor(d, false)
		require.True(t, valid[tier], "days %d", d)
		assert.GreaterOrEqual(t, order[tier], order[prev], "tiers must not regress at %d", d)
		prev = tier
	}
}

func TestTier_ColorAndEmoji(t *testing.T) {
	assert.Equal(t, 0x2ECC71, supply.TierGreen.Color())
	assert.Equal(t, 0x992D22, supply.TierCriticalZero.Color())
	assert.Equal(t, "✅", supply.TierGreen.Emoji())
	assert.Equal(t, "⚡", supply.TierYellow.Emoji())
	assert.Equal(t, "⚠️", supply.TierOrange.Emoji())
	assert.Equal(t, "🚨", supply.TierRed.Emoji())
	assert.Equal(t, "🚨", supply.TierCriticalZero.Emoji())
}

func TestDaysRemaining(t *testing.T) {
	assert.Equal(t, int64(29), supply.DaysRemaining(dec("145"), dec("5")))
	assert.Equal(t, int64(1), supply.DaysRemaining(dec("5"), dec("5")))
	assert.Equal(t, int64(3), supply.DaysRemaining(dec("10"), dec("3")))
	assert.Equal(t, int64(0), supply.DaysRemaining(dec("4.99"), dec("5")))
	assert.Equal(t, int64(0), supply.DaysRemaining(dec("0"), dec("5")))
	assert.Equal(t, int64(0), supply.DaysRemaining(dec("10"), dec("0")))
}

func TestDaysRemaining_Saturates(t *testing.T) {
	days := supply.DaysRemaining(dec("9223372036854775809"), dec("1"))
	assert.Equal(t, int64(math.MaxInt64), days)
	assert.Equal(t, supply.TierGreen, supply.TierFor(days, false))

	c := supply.Classify(supply.ClassifyInput{
		Name:             "Hoard",
		NewSupplies:      dec("1e30"),
		DailyConsumption: dec("1"),
	}, time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, supply.TierGreen, c.Tier)
	assert.Equal(t, int64(math.MaxInt64), c.DaysRemaining)
	assert.Greater(t, c.ProjectedZeroDate.Year(), 9000)
}

func TestClassify_Variants(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("hit zero today", func(t *testing.T) {
		c := supply.Classify(supply.ClassifyInput{
			Name: "Legio X", NewSupplies: dec("0"), DailyConsumption: dec("5"), HitZeroToday: true,
		}, now, time.UTC)
		assert.Equal(t, supply.VariantZeroSupplies, c.Variant)
		assert.Equal(t, supply.TierCriticalZero, c.Tier)
	})

	t.Run("already zero", func(t *testing.T) {
		c := supply.Classify(supply.ClassifyInput{
			Name: "Legio X", NewSupplies: dec("0"), DailyConsumption: dec("5"), WasAlreadyZero: true,
		}, now, time.UTC)
		assert.Equal(t, supply.VariantZeroSupplies, c.Variant)
	})

	t.Run("resting suppresses zero alert", func(t *testing.T) {
		c := supply.Classify(supply.ClassifyInput{
			Name: "Legio X", NewSupplies: dec("0"), DailyConsumption: dec("5"), WasAlreadyZero: true, Resting: true,
		}, now, time.UTC)
		assert.Equal(t, supply.VariantNormal, c.Variant)
		assert.Equal(t, "Legio X (Resting)", c.DisplayName)
	})

	t.Run("normal", func(t *testing.T) {
		c := supply.Classify(supply.ClassifyInput{
			Name: "Legio X", NewSupplies: dec("40"), DailyConsumption: dec("5"),
		}, now, time.UTC)
		assert.Equal(t, supply.VariantNormal, c.Variant)
		assert.Equal(t, supply.TierYellow, c.Tier)
		assert.Equal(t, "Legio X", c.DisplayName)
	})
}

func TestProjectedZeroDate_UsesReferenceZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00 UTC on March 2nd is still March 1st in New York.
	now := time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)
	got := supply.ProjectedZeroDate(now, 10, loc)

	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 11, got.Day())
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 0, got.Hour())
}

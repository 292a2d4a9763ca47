package supply_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/quartermaster/pkg/supply"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected string
	}{
		{"thousands separated", "1,234", "1234"},
		{"plain string", "150", "150"},
		{"padded string", "  42.5 ", "42.5"},
		{"multiple separators", "1,234,567", "1234567"},
		{"float", 145.0, "145"},
		{"int", 7, "7"},
		{"int64", int64(9000), "9000"},
		{"uint", uint(12), "12"},
		{"json number", json.Number("3.25"), "3.25"},
		{"decimal", decimal.RequireFromString("8.5"), "8.5"},
		{"negative", "-3", "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := supply.Normalize(tt.raw)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	_, err := supply.Normalize("abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, supply.ErrInvalidNumericValue)

	var numErr *supply.NumericError
	require.True(t, errors.As(err, &numErr))
	assert.Equal(t, "abc", numErr.Value)
}

func TestNormalize_InvalidKinds(t *testing.T) {
	for _, raw := range []any{true, []string{"1"}, struct{}{}} {
		_, err := supply.Normalize(raw)
		assert.ErrorIs(t, err, supply.ErrInvalidNumericValue, "raw %v", raw)
	}
}

func TestNormalize_Missing(t *testing.T) {
	for _, raw := range []any{nil, "", "   ", ","} {
		_, err := supply.Normalize(raw)
		assert.ErrorIs(t, err, supply.ErrMissingCellData, "raw %q", raw)
	}
}

func TestNormalizeMetric(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		assert.False(t, supply.NormalizeMetric(nil).Present())
		assert.False(t, supply.NormalizeMetric("").Present())
		assert.False(t, supply.NormalizeMetric("  ").Present())
	})

	t.Run("numeric string", func(t *testing.T) {
		m, ok := supply.NormalizeMetric("12,500").Get()
		require.True(t, ok)
		assert.True(t, m.IsNumber())
		assert.Equal(t, "12500", m.Number.String())
	})

	t.Run("number", func(t *testing.T) {
		m, ok := supply.NormalizeMetric(3.0).Get()
		require.True(t, ok)
		assert.True(t, m.IsNumber())
	})

	t.Run("free text", func(t *testing.T) {
		m, ok := supply.NormalizeMetric("In port at Ostia").Get()
		require.True(t, ok)
		assert.False(t, m.IsNumber())
		assert.Equal(t, "In port at Ostia", m.String())
	})

	t.Run("boolean", func(t *testing.T) {
		m, ok := supply.NormalizeMetric(true).Get()
		require.True(t, ok)
		assert.Equal(t, "Yes", m.Text)

		m, ok = supply.NormalizeMetric(false).Get()
		require.True(t, ok)
		assert.Equal(t, "No", m.Text)
	})
}

func TestIsResting(t *testing.T) {
	tests := []struct {
		raw      any
		expected bool
	}{
		{nil, false},
		{true, true},
		{false, false},
		{"TRUE", true},
		{" yes ", true},
		{"Y", true},
		{"1", true},
		{"no", false},
		{"resting", false},
		{"", false},
		{1.0, true},
		{0, false},
		{2, false},
		{[]int{1}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, supply.IsResting(tt.raw), "raw %#v", tt.raw)
	}
}

package report

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/ogulcanaydogan/quartermaster/pkg/supply"
)

const dateLayout = "Mon, Jan 2, 2006"

// formatNumber renders d with thousands separators and at most two decimals.
func formatNumber(d decimal.Decimal) string {
	if d.IsInteger() {
		return humanize.BigComma(d.BigInt())
	}
	return humanize.CommafWithDigits(d.Round(2).InexactFloat64(), 2)
}

func plural(n int64, one, many string) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%s %s", humanize.Comma(n), many)
}

// metricLabels holds the display label of each optional metric.
var metricLabels = map[supply.MetricKey]string{
	supply.MetricLootOwned:       "Loot Owned",
	supply.MetricLootPaid:        "Loot Paid",
	supply.MetricCurrentMorale:   "Morale",
	supply.MetricRestingMorale:   "Resting Morale",
	supply.MetricArmyLength:      "Army Length",
	supply.MetricEffectiveSize:   "Effective Army Size",
	supply.MetricForcedMarchDays: "Forced March Days",
	supply.MetricShippingStatus:  "Shipping Status",
	supply.MetricSupplyShips:     "Supply Ships",
}

// formatMetric renders a metric value. Counts get units when numeric.
func formatMetric(key supply.MetricKey, m supply.Metric) string {
	if !m.IsNumber() {
		return m.Text
	}
	switch key {
	case supply.MetricForcedMarchDays:
		if isInt64(m.Number) {
			return plural(m.Number.IntPart(), "day", "days")
		}
	case supply.MetricSupplyShips:
		if isInt64(m.Number) {
			return plural(m.Number.IntPart(), "ship", "ships")
		}
	case supply.MetricArmyLength:
		return formatNumber(m.Number) + " mi"
	}
	return formatNumber(m.Number)
}

func isInt64(d decimal.Decimal) bool {
	return d.IsInteger() && d.BigInt().IsInt64()
}

package supply

import "github.com/shopspring/decimal"

// Capacity is the carried load after today's consumption.
type Capacity struct {
	RawCarried   decimal.Decimal `json:"raw_carried"`
	Adjusted     decimal.Decimal `json:"adjusted_carried"`
	Limit        decimal.Decimal `json:"capacity"`
	OverCapacity bool            `json:"over_capacity"`
	Overage      decimal.Decimal `json:"overage"`
}

// AdjustCapacity subtracts the supplies consumed today from the carried
// total read from the sheet, which still reflects the load before today's
// deduction. Being exactly at capacity is not over capacity.
func AdjustCapacity(totalCarried, capacity, consumed decimal.Decimal) Capacity {
	adjusted := decimal.Max(decimal.Zero, totalCarried.Sub(consumed))
	c := Capacity{
		RawCarried:   totalCarried,
		Adjusted:     adjusted,
		Limit:        capacity,
		OverCapacity: adjusted.GreaterThan(capacity),
		Overage:      decimal.Zero,
	}
	if c.OverCapacity {
		c.Overage = adjusted.Sub(capacity)
	}
	return c
}

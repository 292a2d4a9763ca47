package supply

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Tier is the severity of an army's supply situation.
type Tier string

const (
	TierGreen        Tier = "green"
	TierYellow       Tier = "yellow"
	TierOrange       Tier = "orange"
	TierRed          Tier = "red"
	TierCriticalZero Tier = "critical_zero"
)

// Color returns the RGB colour used for the tier in notifications.
func (t Tier) Color() int {
	switch t {
	case TierGreen:
		return 0x2ECC71
	case TierYellow:
		return 0xF1C40F
	case TierOrange:
		return 0xE67E22
	case TierRed:
		return 0xE74C3C
	case TierCriticalZero:
		return 0x992D22
	}
	return 0x95A5A6
}

// Emoji returns the marker prefixed to notification titles.
func (t Tier) Emoji() string {
	switch t {
	case TierGreen:
		return "✅"
	case TierYellow:
		return "⚡"
	case TierOrange:
		return "⚠️"
	case TierRed, TierCriticalZero:
		return "🚨"
	}
	return ""
}

// Variant selects the notification shape for a cycle.
type Variant string

const (
	VariantNormal       Variant = "normal"
	VariantZeroSupplies Variant = "zero_supplies"
	VariantError        Variant = "error"
)

// ClassifyInput carries the transition facts the classifier needs.
type ClassifyInput struct {
	Name             string
	NewSupplies      decimal.Decimal
	DailyConsumption decimal.Decimal
	HitZeroToday     bool
	WasAlreadyZero   bool
	Resting          bool
}

// Classification is the outcome of classifying one army's transition.
type Classification struct {
	Tier              Tier      `json:"tier"`
	Variant           Variant   `json:"variant"`
	DaysRemaining     int64     `json:"days_remaining"`
	ProjectedZeroDate time.Time `json:"projected_zero_date"`
	DisplayName       string    `json:"display_name"`
}

// TierFor maps days remaining to a tier. Thresholds are inclusive and
// checked from the most severe down.
func TierFor(daysRemaining int64, resting bool) Tier {
	switch {
	case daysRemaining == 0 && !resting:
		return TierCriticalZero
	case daysRemaining <= 3:
		return TierRed
	case daysRemaining <= 7:
		return TierOrange
	case daysRemaining <= 14:
		return TierYellow
	default:
		return TierGreen
	}
}

var maxDays = decimal.NewFromInt(math.MaxInt64)

// maxProjectedDays bounds the run-out date to roughly ten thousand years.
const maxProjectedDays = 3_650_000

// DaysRemaining is floor(supplies / consumption), saturating at
// math.MaxInt64. Consumption must be positive; otherwise zero is returned.
func DaysRemaining(supplies, consumption decimal.Decimal) int64 {
	if !consumption.IsPositive() || !supplies.IsPositive() {
		return 0
	}
	q, _ := supplies.QuoRem(consumption, 0)
	if q.GreaterThan(maxDays) {
		return math.MaxInt64
	}
	return q.IntPart()
}

// Classify assigns tier and variant. A resting army never gets the zero
// supplies variant, even when its stored supplies are already zero.
// The projected date is computed on the calendar of loc.
func Classify(in ClassifyInput, now time.Time, loc *time.Location) Classification {
	if loc == nil {
		loc = time.UTC
	}
	days := DaysRemaining(in.NewSupplies, in.DailyConsumption)

	c := Classification{
		Tier:              TierFor(days, in.Resting),
		Variant:           VariantNormal,
		DaysRemaining:     days,
		ProjectedZeroDate: ProjectedZeroDate(now, days, loc),
		DisplayName:       in.Name,
	}

	if !in.Resting && (in.WasAlreadyZero || in.HitZeroToday) {
		c.Variant = VariantZeroSupplies
		c.Tier = TierCriticalZero
	}
	if in.Resting {
		c.DisplayName = in.Name + " (Resting)"
	}
	return c
}

// ProjectedZeroDate returns midnight, in loc, of the day supplies run out.
func ProjectedZeroDate(now time.Time, daysRemaining int64, loc *time.Location) time.Time {
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, int(min(daysRemaining, maxProjectedDays)))
}

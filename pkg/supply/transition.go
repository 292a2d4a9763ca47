package supply

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transition describes one day's change to an army's supplies.
type Transition struct {
	Previous       decimal.Decimal `json:"previous"`
	New            decimal.Decimal `json:"new"`
	Resting        bool            `json:"resting"`
	WasAlreadyZero bool            `json:"was_already_zero"`
	HitZeroToday   bool            `json:"hit_zero_today"`
	// Consumed is what was actually taken today. On the day supplies run out
	// it is less than the nominal daily consumption.
	Consumed decimal.Decimal `json:"consumed"`
}

// Apply runs the daily transition. A resting army keeps its supplies and
// never reports a zero transition. Otherwise consumption is subtracted and
// the result floored at zero.
func Apply(previous, consumption decimal.Decimal, resting bool) (Transition, error) {
	if !consumption.IsPositive() {
		return Transition{}, fmt.Errorf("%w: got %s", ErrNonPositiveConsumption, consumption)
	}
	if previous.IsNegative() {
		previous = decimal.Zero
	}

	t := Transition{
		Previous:       previous,
		Resting:        resting,
		WasAlreadyZero: previous.IsZero(),
	}

	if resting {
		t.New = previous
		t.Consumed = decimal.Zero
		return t, nil
	}

	t.New = decimal.Max(decimal.Zero, previous.Sub(consumption))
	t.Consumed = previous.Sub(t.New)
	t.HitZeroToday = previous.IsPositive() && t.New.IsZero()
	return t, nil
}

// ShouldPersist reports whether the new supply level must be written back.
func (t Transition) ShouldPersist() bool {
	return !t.Resting && !t.New.Equal(t.Previous)
}

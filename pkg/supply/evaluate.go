package supply

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the raw cell data read for one army in one cycle.
type Snapshot struct {
	Name             string
	CurrentSupplies  any
	DailyConsumption any
	TotalCarried     any
	CarryingCapacity any
	Resting          any
	Metrics          map[MetricKey]any
}

// Result is everything derived from a snapshot. It holds no references to
// the snapshot and is safe to hand to other goroutines.
type Result struct {
	Name             string          `json:"name"`
	DailyConsumption decimal.Decimal `json:"daily_consumption"`
	Transition       Transition      `json:"transition"`
	Capacity         Capacity        `json:"capacity"`
	Classification   Classification  `json:"classification"`
	Metrics          Metrics         `json:"-"`
	EvaluatedAt      time.Time       `json:"evaluated_at"`
}

// Evaluate runs the full pipeline for one army: normalize, decide resting,
// transition, adjust capacity and classify. It has no side effects.
func Evaluate(s Snapshot, now time.Time, loc *time.Location) (*Result, error) {
	supplies, err := requireNumber("current supplies", s.CurrentSupplies)
	if err != nil {
		return nil, err
	}
	consumption, err := requireNumber("daily consumption", s.DailyConsumption)
	if err != nil {
		return nil, err
	}
	carried, err := requireNumber("total carried", s.TotalCarried)
	if err != nil {
		return nil, err
	}
	capacity, err := requireNumber("carrying capacity", s.CarryingCapacity)
	if err != nil {
		return nil, err
	}

	resting := IsResting(s.Resting)

	t, err := Apply(supplies, consumption, resting)
	if err != nil {
		return nil, err
	}

	return &Result{
		Name:             s.Name,
		DailyConsumption: consumption,
		Transition:       t,
		Capacity:         AdjustCapacity(decimal.Max(decimal.Zero, carried), capacity, t.Consumed),
		Classification: Classify(ClassifyInput{
			Name:             s.Name,
			NewSupplies:      t.New,
			DailyConsumption: consumption,
			HitZeroToday:     t.HitZeroToday,
			WasAlreadyZero:   t.WasAlreadyZero,
			Resting:          t.Resting,
		}, now, loc),
		Metrics:     NewMetrics(s.Metrics),
		EvaluatedAt: now,
	}, nil
}

func requireNumber(field string, raw any) (decimal.Decimal, error) {
	d, err := Normalize(raw)
	if err == nil {
		return d, nil
	}
	var numErr *NumericError
	if errors.As(err, &numErr) {
		numErr.Field = field
		return decimal.Zero, numErr
	}
	return decimal.Zero, fmt.Errorf("%s: %w", field, err)
}

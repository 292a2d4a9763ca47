package supply

import "github.com/shopspring/decimal"

// MetricKey names one of the optional per-army metrics.
type MetricKey string

const (
	MetricLootOwned       MetricKey = "loot_owned"
	MetricLootPaid        MetricKey = "loot_paid"
	MetricCurrentMorale   MetricKey = "current_morale"
	MetricRestingMorale   MetricKey = "resting_morale"
	MetricArmyLength      MetricKey = "army_length"
	MetricEffectiveSize   MetricKey = "effective_size"
	MetricForcedMarchDays MetricKey = "forced_march_days"
	MetricShippingStatus  MetricKey = "shipping_status"
	MetricSupplyShips     MetricKey = "supply_ships"
)

// MetricKeys lists every optional metric in display order.
var MetricKeys = []MetricKey{
	MetricLootOwned,
	MetricLootPaid,
	MetricCurrentMorale,
	MetricRestingMorale,
	MetricArmyLength,
	MetricEffectiveSize,
	MetricForcedMarchDays,
	MetricShippingStatus,
	MetricSupplyShips,
}

// Valid reports whether k is a known metric key.
func (k MetricKey) Valid() bool {
	for _, known := range MetricKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Metrics holds the optional display metrics of an army. Every field goes
// through NormalizeMetric, so absence and coercion behave the same for all.
type Metrics struct {
	LootOwned       Optional[Metric]
	LootPaid        Optional[Metric]
	CurrentMorale   Optional[Metric]
	RestingMorale   Optional[Metric]
	ArmyLength      Optional[Metric]
	EffectiveSize   Optional[Metric]
	ForcedMarchDays Optional[Metric]
	ShippingStatus  Optional[Metric]
	SupplyShips     Optional[Metric]
}

// NewMetrics normalizes raw metric values. Missing keys are absent.
func NewMetrics(raw map[MetricKey]any) Metrics {
	var m Metrics
	for _, key := range MetricKeys {
		if slot := m.slot(key); slot != nil {
			*slot = NormalizeMetric(raw[key])
		}
	}
	return m
}

// Lookup returns the metric stored under key.
func (m Metrics) Lookup(key MetricKey) Optional[Metric] {
	if slot := m.slot(key); slot != nil {
		return *slot
	}
	return None[Metric]()
}

func (m *Metrics) slot(key MetricKey) *Optional[Metric] {
	switch key {
	case MetricLootOwned:
		return &m.LootOwned
	case MetricLootPaid:
		return &m.LootPaid
	case MetricCurrentMorale:
		return &m.CurrentMorale
	case MetricRestingMorale:
		return &m.RestingMorale
	case MetricArmyLength:
		return &m.ArmyLength
	case MetricEffectiveSize:
		return &m.EffectiveSize
	case MetricForcedMarchDays:
		return &m.ForcedMarchDays
	case MetricShippingStatus:
		return &m.ShippingStatus
	case MetricSupplyShips:
		return &m.SupplyShips
	}
	return nil
}

// Present returns the keys of all present metrics in display order.
func (m Metrics) Present() []MetricKey {
	var keys []MetricKey
	for _, key := range MetricKeys {
		if m.Lookup(key).Present() {
			keys = append(keys, key)
		}
	}
	return keys
}

// UnpaidLoot is owned minus paid loot, present only when both are numbers.
func (m Metrics) UnpaidLoot() Optional[decimal.Decimal] {
	owned, ok := m.LootOwned.Get()
	if !ok || !owned.IsNumber() {
		return None[decimal.Decimal]()
	}
	paid, ok := m.LootPaid.Get()
	if !ok || !paid.IsNumber() {
		return None[decimal.Decimal]()
	}
	return Some(decimal.Max(decimal.Zero, owned.Number.Sub(paid.Number)))
}

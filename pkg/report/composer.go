package report

import (
	"fmt"
	"time"

	"github.com/ogulcanaydogan/quartermaster/pkg/alerts"
	"github.com/ogulcanaydogan/quartermaster/pkg/supply"
)

// errorColor is used for error reports; it sits outside the tier palette.
const errorColor = 0x95A5A6

// Composer turns pipeline results into notification messages. It does no I/O.
type Composer struct {
	loc *time.Location
	now func() time.Time
}

// NewComposer creates a composer that formats dates in loc. A nil clock
// means time.Now.
func NewComposer(loc *time.Location, now func() time.Time) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Composer{loc: loc, now: now}
}

// Compose picks the message shape from the result's variant.
func (c *Composer) Compose(r *supply.Result, link string) alerts.Message {
	if r.Classification.Variant == supply.VariantZeroSupplies {
		return c.ZeroSupplies(r, link)
	}
	return c.Status(r, link)
}

// Status builds the daily supply report.
func (c *Composer) Status(r *supply.Result, link string) alerts.Message {
	cls := r.Classification
	tr := r.Transition

	msg := alerts.Message{
		Kind:      alerts.KindSupplyStatus,
		Army:      r.Name,
		Title:     fmt.Sprintf("%s %s Supply Report", cls.Tier.Emoji(), cls.DisplayName),
		Color:     cls.Tier.Color(),
		URL:       link,
		Timestamp: c.now(),
	}

	supplies := formatNumber(tr.New)
	if tr.Resting {
		msg.Description = "The army is resting. No supplies were consumed today."
	} else {
		supplies = fmt.Sprintf("%s (used %s today)", supplies, formatNumber(tr.Consumed))
	}

	msg.Fields = append(msg.Fields,
		alerts.Field{Name: "Supplies", Value: supplies, Inline: true},
		alerts.Field{Name: "Daily Consumption", Value: formatNumber(r.DailyConsumption), Inline: true},
		alerts.Field{Name: "Days Remaining", Value: plural(cls.DaysRemaining, "day", "days"), Inline: true},
		alerts.Field{Name: "Runs Out", Value: cls.ProjectedZeroDate.In(c.loc).Format(dateLayout), Inline: true},
		carriedField(r.Capacity),
	)
	msg.Fields = append(msg.Fields, metricFields(r.Metrics)...)
	if f, ok := capacityAlert(r.Capacity); ok {
		msg.Fields = append(msg.Fields, f)
	}

	if cls.Tier == supply.TierRed && !tr.Resting {
		msg.Preamble = fmt.Sprintf("⚠️ **%s** has %s of supplies left.", r.Name, plural(cls.DaysRemaining, "day", "days"))
	}
	return msg
}

// ZeroSupplies builds the out-of-supplies alert.
func (c *Composer) ZeroSupplies(r *supply.Result, link string) alerts.Message {
	tr := r.Transition

	msg := alerts.Message{
		Kind:      alerts.KindZeroSupplies,
		Army:      r.Name,
		Title:     fmt.Sprintf("%s %s is OUT OF SUPPLIES", supply.TierCriticalZero.Emoji(), r.Name),
		Color:     supply.TierCriticalZero.Color(),
		URL:       link,
		Timestamp: c.now(),
		Preamble:  fmt.Sprintf("🚨 **%s** is out of supplies!", r.Name),
	}

	if tr.HitZeroToday {
		msg.Description = fmt.Sprintf("Supplies ran out today. Only %s of the %s daily requirement could be issued.",
			formatNumber(tr.Consumed), formatNumber(r.DailyConsumption))
	} else {
		msg.Description = fmt.Sprintf("The army has no supplies left and cannot draw its daily %s.",
			formatNumber(r.DailyConsumption))
	}

	msg.Fields = append(msg.Fields,
		alerts.Field{Name: "Supplies", Value: formatNumber(tr.New), Inline: true},
		alerts.Field{Name: "Daily Consumption", Value: formatNumber(r.DailyConsumption), Inline: true},
		carriedField(r.Capacity),
	)
	msg.Fields = append(msg.Fields, metricFields(r.Metrics)...)
	if f, ok := capacityAlert(r.Capacity); ok {
		msg.Fields = append(msg.Fields, f)
	}
	return msg
}

// Error builds the report sent when an army's pipeline fails.
func (c *Composer) Error(army, sheet string, err error, link string) alerts.Message {
	msg := alerts.Message{
		Kind:        alerts.KindErrorReport,
		Army:        army,
		Title:       fmt.Sprintf("❌ %s: supply update failed", army),
		Description: err.Error(),
		Color:       errorColor,
		URL:         link,
		Timestamp:   c.now(),
	}
	if sheet != "" {
		msg.Fields = append(msg.Fields, alerts.Field{Name: "Sheet", Value: sheet, Inline: true})
	}
	return msg
}

func carriedField(capacity supply.Capacity) alerts.Field {
	return alerts.Field{
		Name:   "Carried / Capacity",
		Value:  fmt.Sprintf("%s / %s", formatNumber(capacity.Adjusted), formatNumber(capacity.Limit)),
		Inline: true,
	}
}

func capacityAlert(capacity supply.Capacity) (alerts.Field, bool) {
	if !capacity.OverCapacity {
		return alerts.Field{}, false
	}
	return alerts.Field{
		Name: "⚠️ Over Capacity",
		Value: fmt.Sprintf("Carrying %s against a capacity of %s (%s over).",
			formatNumber(capacity.Adjusted), formatNumber(capacity.Limit), formatNumber(capacity.Overage)),
	}, true
}

// metricFields renders every present metric; absent ones are skipped.
func metricFields(m supply.Metrics) []alerts.Field {
	var fields []alerts.Field
	for _, key := range m.Present() {
		value, _ := m.Lookup(key).Get()
		fields = append(fields, alerts.Field{
			Name:   metricLabels[key],
			Value:  formatMetric(key, value),
			Inline: true,
		})
		if key == supply.MetricLootPaid {
			if unpaid, ok := m.UnpaidLoot().Get(); ok {
				fields = append(fields, alerts.Field{Name: "Loot Unpaid", Value: formatNumber(unpaid), Inline: true})
			}
		}
	}
	return fields
}

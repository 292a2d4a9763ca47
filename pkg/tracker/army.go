package tracker

import (
	"github.com/ogulcanaydogan/quartermaster/pkg/alerts"
	"github.com/ogulcanaydogan/quartermaster/pkg/sheets"
	"github.com/ogulcanaydogan/quartermaster/pkg/supply"
)

// Cells holds the A1 addresses of an army's inputs. Resting is optional.
type Cells struct {
	Supplies    string
	Consumption string
	Carried     string
	Capacity    string
	Resting     string
}

// Army is a fully resolved army: where its data lives and where its
// reports go.
type Army struct {
	Name     string
	SheetID  string
	Tab      string
	Link     string
	Cells    Cells
	Metrics  map[supply.MetricKey]string
	Notifier alerts.Notifier
}

// addresses lists every cell to read for the army, in a stable order.
func (a Army) addresses() []string {
	cells := []string{a.Cells.Supplies, a.Cells.Consumption, a.Cells.Carried, a.Cells.Capacity}
	if a.Cells.Resting != "" {
		cells = append(cells, a.Cells.Resting)
	}
	for _, key := range supply.MetricKeys {
		if addr := a.Metrics[key]; addr != "" {
			cells = append(cells, addr)
		}
	}
	return cells
}

// snapshot maps the values read from the sheet onto the pipeline input.
func (a Army) snapshot(values map[string]any) supply.Snapshot {
	get := func(addr string) any {
		if addr == "" {
			return nil
		}
		return values[sheets.NormalizeCell(addr)]
	}

	metrics := make(map[supply.MetricKey]any, len(a.Metrics))
	for key, addr := range a.Metrics {
		metrics[key] = get(addr)
	}

	return supply.Snapshot{
		Name:             a.Name,
		CurrentSupplies:  get(a.Cells.Supplies),
		DailyConsumption: get(a.Cells.Consumption),
		TotalCarried:     get(a.Cells.Carried),
		CarryingCapacity: get(a.Cells.Capacity),
		Resting:          get(a.Cells.Resting),
		Metrics:          metrics,
	}
}

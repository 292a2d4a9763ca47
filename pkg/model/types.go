package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus is the outcome of one army's daily cycle.
type RunStatus string

const (
	RunOK      RunStatus = "ok"
	RunError   RunStatus = "error"
	RunDryRun  RunStatus = "dry_run"
	RunSkipped RunStatus = "skipped"
)

// RunRecord is one army's entry in the run history.
type RunRecord struct {
	ID            string          `json:"id" yaml:"id" db:"id"`
	Army          string          `json:"army" yaml:"army" db:"army"`
	RanAt         time.Time       `json:"ran_at" yaml:"ran_at" db:"ran_at"`
	Status        RunStatus       `json:"status" yaml:"status" db:"status"`
	Previous      decimal.Decimal `json:"previous" yaml:"previous" db:"previous"`
	New           decimal.Decimal `json:"new" yaml:"new" db:"new"`
	Consumed      decimal.Decimal `json:"consumed" yaml:"consumed" db:"consumed"`
	DaysRemaining int64           `json:"days_remaining" yaml:"days_remaining" db:"days_remaining"`
	Tier          string          `json:"tier,omitempty" yaml:"tier,omitempty" db:"tier"`
	Variant       string          `json:"variant,omitempty" yaml:"variant,omitempty" db:"variant"`
	Resting       bool            `json:"resting" yaml:"resting" db:"resting"`
	OverCapacity  bool            `json:"over_capacity" yaml:"over_capacity" db:"over_capacity"`
	Persisted     bool            `json:"persisted" yaml:"persisted" db:"persisted"`
	Notified      bool            `json:"notified" yaml:"notified" db:"notified"`
	Error         string          `json:"error,omitempty" yaml:"error,omitempty" db:"error"`
}

// RunFilter controls which run records are returned.
type RunFilter struct {
	Army   string    `json:"army,omitempty"`
	Status RunStatus `json:"status,omitempty"`
	Since  time.Time `json:"since,omitempty"`
	Until  time.Time `json:"until,omitempty"`
	Limit  int       `json:"limit,omitempty"`
}

// RunSummary aggregates the records of one batch.
type RunSummary struct {
	Total     int         `json:"total"`
	OK        int         `json:"ok"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	DryRun    bool        `json:"dry_run"`
	StartedAt time.Time   `json:"started_at"`
	Duration  string      `json:"duration"`
	Records   []RunRecord `json:"records"`
}

// Add counts a record into the summary.
func (s *RunSummary) Add(r RunRecord) {
	s.Total++
	switch r.Status {
	case RunOK, RunDryRun:
		s.OK++
	case RunError:
		s.Failed++
	case RunSkipped:
		s.Skipped++
	}
	s.Records = append(s.Records, r)
}

// DayBounds returns the start and end of the calendar day containing t in loc.
func DayBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end = start.AddDate(0, 0, 1)
	return start, end
}

// CellKind tells how a stored cell value is interpreted.
type CellKind string

const (
	CellNumber CellKind = "number"
	CellText   CellKind = "text"
	CellBool   CellKind = "bool"
)

// Cell is one value in the local cell store.
type Cell struct {
	SheetID   string    `json:"sheet_id" yaml:"sheet_id" db:"sheet_id"`
	Tab       string    `json:"tab" yaml:"tab" db:"tab"`
	Address   string    `json:"address" yaml:"address" db:"address"`
	Value     string    `json:"value" yaml:"value" db:"value"`
	Kind      CellKind  `json:"kind" yaml:"kind" db:"kind"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at" db:"updated_at"`
}

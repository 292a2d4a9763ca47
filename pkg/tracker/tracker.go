package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/quartermaster/pkg/alerts"
	"github.com/ogulcanaydogan/quartermaster/pkg/model"
	"github.com/ogulcanaydogan/quartermaster/pkg/report"
	"github.com/ogulcanaydogan/quartermaster/pkg/sheets"
	"github.com/ogulcanaydogan/quartermaster/pkg/supply"
)

// History persists run records. It may be nil.
type History interface {
	RecordRun(ctx context.Context, record *model.RunRecord) error
	ListRuns(ctx context.Context, filter model.RunFilter) ([]model.RunRecord, error)
}

// Options tune a SupplyTracker.
type Options struct {
	// Delay is the pause between two armies of a batch.
	Delay time.Duration
	// DryRun evaluates and composes without writing, sending or recording.
	DryRun bool
	// OncePerDay skips armies that already have a successful run today.
	OncePerDay bool
	Location   *time.Location
	Now        func() time.Time
}

// Outcome is what happened to one army in a batch.
type Outcome struct {
	Record  model.RunRecord
	Result  *supply.Result
	Message alerts.Message
	Err     error
}

// SupplyTracker runs the daily supply cycle: read cells, evaluate, write the
// new supply level back, notify and record.
type SupplyTracker struct {
	store    sheets.Store
	history  History
	composer *report.Composer
	opts     Options
	logger   *slog.Logger
}

// NewSupplyTracker creates a tracker with the given dependencies.
func NewSupplyTracker(store sheets.Store, history History, opts Options, logger *slog.Logger) *SupplyTracker {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SupplyTracker{
		store:    store,
		history:  history,
		composer: report.NewComposer(opts.Location, opts.Now),
		opts:     opts,
		logger:   logger,
	}
}

// Run processes armies one at a time. A failing army gets an error report
// and the batch moves on; only cancellation stops it early.
func (t *SupplyTracker) Run(ctx context.Context, armies []Army) ([]Outcome, *model.RunSummary, error) {
	summary := &model.RunSummary{DryRun: t.opts.DryRun, StartedAt: t.opts.Now()}
	outcomes := make([]Outcome, 0, len(armies))

	t.logger.Info("supply run started", "armies", len(armies), "dry_run", t.opts.DryRun)

	for i, army := range armies {
		if i > 0 {
			if err := sleep(ctx, t.opts.Delay); err != nil {
				return outcomes, summary, err
			}
		}
		if err := ctx.Err(); err != nil {
			return outcomes, summary, err
		}

		out := t.ProcessArmy(ctx, army)
		outcomes = append(outcomes, out)
		summary.Add(out.Record)
	}

	summary.Duration = t.opts.Now().Sub(summary.StartedAt).Round(time.Millisecond).String()
	t.logger.Info("supply run finished",
		"total", summary.Total,
		"ok", summary.OK,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", summary.Duration,
	)
	return outcomes, summary, nil
}

// Evaluate reads an army's cells and runs the pipeline without side effects.
func (t *SupplyTracker) Evaluate(ctx context.Context, army Army) (*supply.Result, error) {
	values, err := t.store.GetCellValues(ctx, army.SheetID, army.Tab, army.addresses())
	if err != nil {
		return nil, fmt.Errorf("read cells: %w", err)
	}
	return supply.Evaluate(army.snapshot(values), t.opts.Now(), t.opts.Location)
}

// ProcessArmy runs one army's cycle. Exactly one transition is applied.
func (t *SupplyTracker) ProcessArmy(ctx context.Context, army Army) Outcome {
	logger := t.logger.With("army", army.Name)

	if t.ranToday(ctx, army, logger) {
		logger.Info("army already updated today, skipping")
		return Outcome{Record: model.RunRecord{
			ID:     uuid.New().String(),
			Army:   army.Name,
			RanAt:  t.opts.Now(),
			Status: model.RunSkipped,
		}}
	}

	result, err := t.Evaluate(ctx, army)
	if err != nil {
		return t.fail(ctx, army, err, logger)
	}

	rec := recordFor(result)
	tr := result.Transition
	if tr.ShouldPersist() && !t.opts.DryRun {
		if err := t.store.SetCellValue(ctx, army.SheetID, army.Tab, army.Cells.Supplies, tr.New); err != nil {
			return t.fail(ctx, army, fmt.Errorf("write supplies: %w", err), logger)
		}
		rec.Persisted = true
	}

	msg := t.composer.Compose(result, army.Link)
	logger.Info("army evaluated",
		"previous", tr.Previous.String(),
		"new", tr.New.String(),
		"consumed", tr.Consumed.String(),
		"days_remaining", result.Classification.DaysRemaining,
		"tier", result.Classification.Tier,
		"variant", result.Classification.Variant,
		"resting", tr.Resting,
		"over_capacity", result.Capacity.OverCapacity,
		"persisted", rec.Persisted,
	)

	if t.opts.DryRun {
		rec.Status = model.RunDryRun
		return Outcome{Record: rec, Result: result, Message: msg}
	}

	if err := t.send(ctx, army, msg); err != nil {
		logger.Error("send report failed", "kind", msg.Kind, "error", err)
		rec.Error = err.Error()
	} else {
		rec.Notified = army.Notifier != nil
	}

	t.record(ctx, &rec, logger)
	return Outcome{Record: rec, Result: result, Message: msg}
}

// fail sends a best-effort error report and records the failure.
func (t *SupplyTracker) fail(ctx context.Context, army Army, err error, logger *slog.Logger) Outcome {
	if IsDataError(err) {
		logger.Warn("army has invalid sheet data", "error", err)
	} else {
		logger.Error("army update failed", "error", err)
	}

	rec := model.RunRecord{
		ID:     uuid.New().String(),
		Army:   army.Name,
		RanAt:   t.opts.Now(),
		Status:  model.RunError,
		Variant: string(supply.VariantError),
		Error:   err.Error(),
	}
	msg := t.composer.Error(army.Name, army.Tab, err, army.Link)

	if !t.opts.DryRun {
		if sendErr := t.send(ctx, army, msg); sendErr != nil {
			logger.Error("send error report failed", "error", sendErr)
		} else {
			rec.Notified = army.Notifier != nil
		}
		t.record(ctx, &rec, logger)
	}
	return Outcome{Record: rec, Message: msg, Err: err}
}

func (t *SupplyTracker) send(ctx context.Context, army Army, msg alerts.Message) error {
	if army.Notifier == nil {
		return nil
	}
	if err := army.Notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", army.Notifier.Name(), err)
	}
	return nil
}

func (t *SupplyTracker) record(ctx context.Context, rec *model.RunRecord, logger *slog.Logger) {
	if t.history == nil {
		return
	}
	if err := t.history.RecordRun(ctx, rec); err != nil {
		logger.Error("record run failed", "error", err)
	}
}

func (t *SupplyTracker) ranToday(ctx context.Context, army Army, logger *slog.Logger) bool {
	if !t.opts.OncePerDay || t.opts.DryRun || t.history == nil {
		return false
	}
	start, end := model.DayBounds(t.opts.Now(), t.opts.Location)
	runs, err := t.history.ListRuns(ctx, model.RunFilter{
		Army:   army.Name,
		Status: model.RunOK,
		Since:  start,
		Until:  end,
		Limit:  1,
	})
	if err != nil {
		logger.Warn("check previous runs failed", "error", err)
		return false
	}
	return len(runs) > 0
}

func recordFor(r *supply.Result) model.RunRecord {
	return model.RunRecord{
		ID:            uuid.New().String(),
		Army:          r.Name,
		RanAt:         r.EvaluatedAt,
		Status:        model.RunOK,
		Previous:      r.Transition.Previous,
		New:           r.Transition.New,
		Consumed:      r.Transition.Consumed,
		DaysRemaining: r.Classification.DaysRemaining,
		Tier:          string(r.Classification.Tier),
		Variant:       string(r.Classification.Variant),
		Resting:       r.Transition.Resting,
		OverCapacity:  r.Capacity.OverCapacity,
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsDataError reports whether err came from bad cell data rather than I/O.
func IsDataError(err error) bool {
	return errors.Is(err, supply.ErrInvalidNumericValue) ||
		errors.Is(err, supply.ErrNonPositiveConsumption) ||
		errors.Is(err, supply.ErrMissingCellData)
}

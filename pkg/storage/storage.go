package storage

import (
	"context"

	"github.com/ogulcanaydogan/quartermaster/pkg/model"
	"github.com/ogulcanaydogan/quartermaster/pkg/sheets"
)

// Storage defines the local persistence layer: an offline cell store and
// the run history.
type Storage interface {
	sheets.Store

	// PutCell stores a raw value (number, text or boolean) in a cell.
	PutCell(ctx context.Context, sheetID, tab, cell string, raw any) error

	// ListCells returns every stored cell of a sheet tab.
	ListCells(ctx context.Context, sheetID, tab string) ([]model.Cell, error)

	// RecordRun persists one army's run record.
	RecordRun(ctx context.Context, record *model.RunRecord) error

	// ListRuns returns run records matching the filter, newest first.
	ListRuns(ctx context.Context, filter model.RunFilter) ([]model.RunRecord, error)

	// Close releases resources.
	Close() error
}

package sheets

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Store is a key-value view of a spreadsheet: one raw value per cell address.
type Store interface {
	// GetCellValues reads the given cells from one tab. Empty cells are
	// missing from the returned map. Values are float64, json.Number,
	// string or bool depending on the backend.
	GetCellValues(ctx context.Context, sheetID, tab string, cells []string) (map[string]any, error)

	// SetCellValue writes a number into a single cell.
	SetCellValue(ctx context.Context, sheetID, tab, cell string, value decimal.Decimal) error
}

// A1Range builds an A1 range such as 'Army Supplies'!B2. The tab name is
// always quoted so names with spaces or apostrophes are safe.
func A1Range(tab, cell string) string {
	if tab == "" {
		return cell
	}
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'!" + cell
}

// NormalizeCell upper-cases a cell address and strips absolute markers, so
// "$b$2" and "B2" name the same cell.
func NormalizeCell(cell string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(cell), "$", ""))
}

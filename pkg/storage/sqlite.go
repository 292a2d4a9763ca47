package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ogulcanaydogan/quartermaster/pkg/model"
	"github.com/ogulcanaydogan/quartermaster/pkg/sheets"
	"github.com/ogulcanaydogan/quartermaster/pkg/supply"

	_ "modernc.org/sqlite"
)

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) GetCellValues(ctx context.Context, sheetID, tab string, cells []string) (map[string]any, error) {
	values := make(map[string]any, len(cells))
	if len(cells) == 0 {
		return values, nil
	}

	args := []any{sheetID, tab}
	placeholders := make([]string, 0, len(cells))
	for _, c := range cells {
		placeholders = append(placeholders, "?")
		args = append(args, sheets.NormalizeCell(c))
	}

	query := fmt.Sprintf(`SELECT address, value, kind FROM cells
		WHERE sheet_id = ? AND tab = ? AND address IN (%s)`, strings.Join(placeholders, ", "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cells: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var address, value string
		var kind model.CellKind
		if err := rows.Scan(&address, &value, &kind); err != nil {
			return nil, fmt.Errorf("scan cell row: %w", err)
		}
		values[address] = cellValue(value, kind)
	}
	return values, rows.Err()
}

func (s *SQLite) SetCellValue(ctx context.Context, sheetID, tab, cell string, value decimal.Decimal) error {
	return s.putCell(ctx, sheetID, tab, cell, value.String(), model.CellNumber)
}

// PutCell stores raw in a cell. Numeric input (including "1,500") is kept as a
// number, booleans as bool and anything else as text. A nil or blank value
// clears the cell.
func (s *SQLite) PutCell(ctx context.Context, sheetID, tab, cell string, raw any) error {
	if b, ok := raw.(bool); ok {
		return s.putCell(ctx, sheetID, tab, cell, fmt.Sprint(b), model.CellBool)
	}
	n, err := supply.Normalize(raw)
	switch {
	case err == nil:
		return s.putCell(ctx, sheetID, tab, cell, n.String(), model.CellNumber)
	case isBlank(raw):
		return s.deleteCell(ctx, sheetID, tab, cell)
	}
	return s.putCell(ctx, sheetID, tab, cell, fmt.Sprint(raw), model.CellText)
}

func (s *SQLite) ListCells(ctx context.Context, sheetID, tab string) ([]model.Cell, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sheet_id, tab, address, value, kind, updated_at
		 FROM cells WHERE sheet_id = ? AND tab = ? ORDER BY address`, sheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("list cells: %w", err)
	}
	defer rows.Close()

	var cells []model.Cell
	for rows.Next() {
		var c model.Cell
		if err := rows.Scan(&c.SheetID, &c.Tab, &c.Address, &c.Value, &c.Kind, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cell row: %w", err)
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

func (s *SQLite) putCell(ctx context.Context, sheetID, tab, cell, value string, kind model.CellKind) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cells (sheet_id, tab, address, value, kind, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(sheet_id, tab, address) DO UPDATE SET
		   value = excluded.value,
		   kind = excluded.kind,
		   updated_at = excluded.updated_at`,
		sheetID, tab, sheets.NormalizeCell(cell), value, kind, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set cell %s: %w", sheets.A1Range(tab, cell), err)
	}
	return nil
}

func (s *SQLite) deleteCell(ctx context.Context, sheetID, tab, cell string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cells WHERE sheet_id = ? AND tab = ? AND address = ?`,
		sheetID, tab, sheets.NormalizeCell(cell))
	if err != nil {
		return fmt.Errorf("clear cell %s: %w", sheets.A1Range(tab, cell), err)
	}
	return nil
}

func (s *SQLite) RecordRun(ctx context.Context, r *model.RunRecord) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.RanAt.IsZero() {
		r.RanAt = time.Now()
	}
	r.RanAt = r.RanAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, army, ran_at, status, previous, new, consumed, days_remaining,
		   tier, variant, resting, over_capacity, persisted, notified, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Army, r.RanAt, r.Status,
		r.Previous.String(), r.New.String(), r.Consumed.String(), r.DaysRemaining,
		r.Tier, r.Variant, r.Resting, r.OverCapacity, r.Persisted, r.Notified, r.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

func (s *SQLite) ListRuns(ctx context.Context, filter model.RunFilter) ([]model.RunRecord, error) {
	query := `SELECT id, army, ran_at, status, previous, new, consumed, days_remaining,
		tier, variant, resting, over_capacity, persisted, notified, error FROM runs`
	where, args := buildWhereClause(filter)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY ran_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []model.RunRecord
	for rows.Next() {
		var r model.RunRecord
		if err := rows.Scan(&r.ID, &r.Army, &r.RanAt, &r.Status,
			&r.Previous, &r.New, &r.Consumed, &r.DaysRemaining,
			&r.Tier, &r.Variant, &r.Resting, &r.OverCapacity, &r.Persisted, &r.Notified, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// buildWhereClause constructs a SQL WHERE clause from a RunFilter.
func buildWhereClause(filter model.RunFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Army != "" {
		conditions = append(conditions, "army = ?")
		args = append(args, filter.Army)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "ran_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	if !filter.Until.IsZero() {
		conditions = append(conditions, "ran_at < ?")
		args = append(args, filter.Until.UTC())
	}

	return strings.Join(conditions, " AND "), args
}

func cellValue(value string, kind model.CellKind) any {
	switch kind {
	case model.CellNumber:
		return json.Number(value)
	case model.CellBool:
		return value == "true"
	}
	return value
}

func isBlank(raw any) bool {
	if raw == nil {
		return true
	}
	s, ok := raw.(string)
	return ok && strings.TrimSpace(s) == ""
}

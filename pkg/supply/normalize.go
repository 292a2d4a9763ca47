package supply

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// thousandsSeparator is stripped from textual numbers before parsing.
const thousandsSeparator = ","

// Normalize converts a raw cell value into a number. Numeric kinds pass
// through; strings are parsed after removing thousands separators.
func Normalize(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, ErrMissingCellData
	case decimal.Decimal:
		return v, nil
	case json.Number:
		return parseNumber(string(v))
	case string:
		return parseNumber(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, &NumericError{Value: fmt.Sprint(v), Err: ErrInvalidNumericValue}
		}
		return decimal.NewFromFloat(v), nil
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, &NumericError{Value: fmt.Sprint(v), Err: ErrInvalidNumericValue}
		}
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return fromUint(uint64(v)), nil
	case uint8:
		return fromUint(uint64(v)), nil
	case uint16:
		return fromUint(uint64(v)), nil
	case uint32:
		return fromUint(uint64(v)), nil
	case uint64:
		return fromUint(v), nil
	default:
		return decimal.Zero, &NumericError{Value: fmt.Sprint(v), Err: ErrInvalidNumericValue}
	}
}

func parseNumber(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, thousandsSeparator, ""))
	if cleaned == "" {
		return decimal.Zero, ErrMissingCellData
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &NumericError{Value: s, Err: ErrInvalidNumericValue}
	}
	return d, nil
}

func fromUint(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// Metric is an optional display value: a number when the raw cell parses as
// one, free text otherwise.
type Metric struct {
	Number  decimal.Decimal
	Text    string
	numeric bool
}

// NumberMetric builds a numeric metric.
func NumberMetric(d decimal.Decimal) Metric {
	return Metric{Number: d, numeric: true}
}

// TextMetric builds a free-text metric.
func TextMetric(s string) Metric {
	return Metric{Text: s}
}

// IsNumber reports whether the metric carries a number.
func (m Metric) IsNumber() bool { return m.numeric }

func (m Metric) String() string {
	if m.numeric {
		return m.Number.String()
	}
	return m.Text
}

// NormalizeMetric is the permissive variant used for optional metrics. It
// never fails: blank values are absent, numbers are coerced when they parse,
// and everything else passes through as text.
func NormalizeMetric(raw any) Optional[Metric] {
	switch v := raw.(type) {
	case nil:
		return None[Metric]()
	case bool:
		if v {
			return Some(TextMetric("Yes"))
		}
		return Some(TextMetric("No"))
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return None[Metric]()
		}
		if d, err := parseNumber(text); err == nil {
			return Some(NumberMetric(d))
		}
		return Some(TextMetric(text))
	}

	if d, err := Normalize(raw); err == nil {
		return Some(NumberMetric(d))
	}
	text := strings.TrimSpace(fmt.Sprint(raw))
	if text == "" {
		return None[Metric]()
	}
	return Some(TextMetric(text))
}

package supply

import (
	"strings"

	"github.com/shopspring/decimal"
)

var restingWords = map[string]bool{
	"true": true,
	"yes":  true,
	"y":    true,
	"1":    true,
}

// IsResting interprets the raw resting indicator. Unrecognized input means
// the army is not resting.
func IsResting(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return restingWords[strings.ToLower(strings.TrimSpace(v))]
	}

	d, err := Normalize(raw)
	if err != nil {
		return false
	}
	return d.Equal(decimal.NewFromInt(1))
}

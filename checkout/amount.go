package checkout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmountToCents normalizes a shopper-facing amount into integer minor
// currency units. Strings may carry currency symbols and thousands
// separators ("$1,234.50"); JSON numbers arrive as float64. The result is
// round(amount * 100) half away from zero, computed with decimals so
// float64 cents drift cannot creep in.
func ParseAmountToCents(raw any) (int64, error) {
	var d decimal.Decimal
	switch v := raw.(type) {
	case string:
		cleaned := stripNonNumeric(v)
		if cleaned == "" {
			return 0, fmt.Errorf("amount %q has no digits", v)
		}
		parsed, err := decimal.NewFromString(cleaned)
		if err != nil {
			return 0, fmt.Errorf("cannot parse amount %q: %w", v, err)
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return 0, fmt.Errorf("cannot parse amount %q: %w", v.String(), err)
		}
		d = parsed
	case nil:
		return 0, fmt.Errorf("amount is required")
	default:
		return 0, fmt.Errorf("unsupported amount type %T", raw)
	}

	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %s", d.String())
	}
	return cents, nil
}

// stripNonNumeric keeps digits and the decimal point, dropping currency
// symbols, commas and whitespace.
func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package checkout

import (
	"strings"

	"github.com/felixxplor/ecommerce-website-sub001/models"
)

// SplitFullName splits a provider-supplied single name string into first
// and last names. The last whitespace-delimited token is the surname;
// everything before it is the first name. Single-word names get an empty
// surname. Lossy for multi-word surnames, but kept for compatibility with
// how providers report payer names.
func SplitFullName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	idx := strings.LastIndexAny(full, " \t")
	if idx < 0 {
		return full, ""
	}
	return strings.TrimSpace(full[:idx]), strings.TrimSpace(full[idx+1:])
}

// ShipToDifferentAddress compares the structural fields that identify a
// delivery point. Only when line1, city and postcode all match is the
// shipping address considered the same as billing.
func ShipToDifferentAddress(billing, shipping models.Address) bool {
	if strings.TrimSpace(shipping.Address1) == "" {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(billing.Address1), strings.TrimSpace(shipping.Address1)) ||
		!strings.EqualFold(strings.TrimSpace(billing.City), strings.TrimSpace(shipping.City)) ||
		!strings.EqualFold(strings.TrimSpace(billing.Postcode), strings.TrimSpace(shipping.Postcode))
}

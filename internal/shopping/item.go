package shopping

import (
	"regexp"
	"strings"

	"ciboway/internal/recipe"

	"github.com/shopspring/decimal"
)

// GroceryItem is one row of the shopping list. ID is the aggregation key.
type GroceryItem struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Unit       string           `json:"unit"`
	Category   recipe.Category  `json:"category"`
	Quantity   decimal.Decimal  `json:"quantity"`
	Checked    bool             `json:"checked"`
	HaveAtHome bool             `json:"have_at_home"`
	Price      *decimal.Decimal `json:"price,omitempty"`
}

// Remaining reports whether the item still has to be bought.
func (i GroceryItem) Remaining() bool {
	return !i.Checked && !i.HaveAtHome
}

// Key derives the aggregation key of an ingredient. Names compare
// case-insensitively, units exactly.
func Key(name, unit string) string {
	return strings.ToLower(name) + "-" + unit
}

var (
	mixedFraction  = regexp.MustCompile(`^(\d+)\s+(\d+)\s*/\s*(\d+)$`)
	simpleFraction = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
	leadingNumber  = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)
)

// ParseQuantity reads an ingredient quantity. Plain decimals, fractions
// ("1/2", "1 1/2") and a leading number ("2 large") are understood; anything
// else counts as zero.
func ParseQuantity(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}
	if m := mixedFraction.FindStringSubmatch(s); m != nil {
		if frac, ok := fraction(m[2], m[3]); ok {
			return decimal.RequireFromString(m[1]).Add(frac)
		}
		return decimal.Zero
	}
	if m := simpleFraction.FindStringSubmatch(s); m != nil {
		if frac, ok := fraction(m[1], m[2]); ok {
			return frac
		}
		return decimal.Zero
	}
	if m := leadingNumber.FindString(s); m != "" {
		if d, err := decimal.NewFromString(m); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func fraction(num, den string) (decimal.Decimal, bool) {
	d := decimal.RequireFromString(den)
	if d.IsZero() {
		return decimal.Zero, false
	}
	return decimal.RequireFromString(num).Div(d), true
}

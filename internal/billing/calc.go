package billing

import (
	"fmt"
	"math"

	"github.com/Pavank5214/charan-sub000/internal/models"
	"github.com/Pavank5214/charan-sub000/internal/validation"
)

// Totals is the derived money block persisted on every document that
// carries line items. It is recomputed server-side on every save; values
// submitted by the client are discarded.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	GST      float64 `json:"gst"`
	Total    float64 `json:"total"`
}

// Round2 rounds half away from zero to two decimals, matching the
// display rounding of the amounts printed on documents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ItemAmount returns the unrounded line amount. Sums over items must use
// the unrounded value; rounding each line first can shift the grand total
// by a paisa.
func ItemAmount(it models.LineItem) float64 {
	return it.Qty * it.Rate * (1 - it.Discount/100)
}

// SanitizeItems drops lines with an empty description and fills the unit
// default. The empty-description filter runs before validation: such lines
// are excluded from persistence entirely, they are not an error.
func SanitizeItems(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	for _, it := range items {
		if it.Description == "" {
			continue
		}
		if it.Unit == "" {
			it.Unit = "NOS"
		}
		out = append(out, it)
	}
	return out
}

// ValidateItems checks the numeric bounds on already-sanitized items:
// qty >= 0, rate >= 0, discount within [0,100]. Out-of-bounds values are
// rejected, never clamped. BasicPrice and the tax rate must not be negative.
func ValidateItems(items []models.LineItem, basicPrice, gstRate float64) validation.Violations {
	v := validation.Violations{}
	for i, it := range items {
		validation.NonNegative(fmt.Sprintf("items.%d.qty", i), it.Qty, v)
		validation.NonNegative(fmt.Sprintf("items.%d.rate", i), it.Rate, v)
		validation.RangeFloat(fmt.Sprintf("items.%d.discount", i), it.Discount, 0, 100, v)
	}
	validation.NonNegative("basic_price", basicPrice, v)
	validation.NonNegative("gst_rate", gstRate, v)
	return v
}

// ComputeTotals annotates each item with its rounded amount and derives
// subtotal, gst, and total. The subtotal is intentionally NOT rounded
// before tax is applied; only gst and total carry display rounding.
func ComputeTotals(items []models.LineItem, basicPrice, gstRate float64) ([]models.LineItem, Totals) {
	var sum float64
	out := make([]models.LineItem, len(items))
	for i, it := range items {
		raw := ItemAmount(it)
		sum += raw
		it.Amount = Round2(raw)
		out[i] = it
	}
	subtotal := sum + basicPrice
	gst := Round2(subtotal * gstRate / 100)
	total := Round2(subtotal + gst)
	return out, Totals{Subtotal: Round2(subtotal), GST: gst, Total: total}
}

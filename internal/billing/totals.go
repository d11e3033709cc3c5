package billing

// LineInput is one invoice line as submitted by the caller.
type LineInput struct {
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
}

// ComputeTotals computes HT, TVA, and TTC amounts from the submitted lines.
// Amounts keep full float precision; rounding happens at render time only.
// An empty line list yields an all-zero result. Invalid quantities and
// prices are rejected earlier, at the input validation boundary.
func ComputeTotals(lines []LineInput, tvaEnabled bool, tvaRate float64) (subtotal, tvaAmount, total float64) {
	for _, l := range lines {
		subtotal += l.Qty * l.UnitPrice
	}
	if tvaEnabled {
		tvaAmount = subtotal * tvaRate / 100
	}
	total = subtotal + tvaAmount
	return subtotal, tvaAmount, total
}

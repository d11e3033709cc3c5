package pdf

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var frPrinter = message.NewPrinter(language.French)

// CLDR groups French digits with non-breaking spaces; the document uses
// plain spaces, same substitution the layout has always done.
var spaceReplacer = strings.NewReplacer(" ", " ", " ", " ")

// FormatCurrency renders an amount in the fixed fr-FR convention:
// comma decimals, space-grouped thousands, two decimal places, trailing
// euro sign. Example: 1234.5 -> "1 234,50 €".
func FormatCurrency(v float64) string {
	s := frPrinter.Sprint(number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
	return spaceReplacer.Replace(s) + " €"
}

// FormatDate renders a date in the fixed fr-FR convention, DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// formatNumber renders a bare number (quantity, TVA rate) without forced
// decimals: 20 -> "20", 5.5 -> "5,5".
func formatNumber(v float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(v, 'f', -1, 64), ".", ",")
}

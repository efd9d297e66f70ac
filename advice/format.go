package advice

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatDollars renders d as whole dollars with thousands separators, rounding half to even.
// Negative amounts keep the sign after the dollar sign: $-500.
func FormatDollars(d decimal.Decimal) string {
	return "$" + printer.Sprintf("%d", d.RoundBank(0).IntPart())
}

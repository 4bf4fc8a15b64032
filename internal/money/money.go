// Package money renders decimal amounts as localized currency strings.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts in a fixed currency and locale, resolved once
// at startup from configuration.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
	// fallback is used when the currency code is not a known ISO 4217 unit.
	fallback string
}

// NewFormatter builds a formatter for the given ISO 4217 code and BCP 47
// locale. Unknown codes fall back to "CODE amount" rendering and unknown
// locales fall back to English.
func NewFormatter(code, locale string) *Formatter {
	f := &Formatter{}
	unit, err := currency.ParseISO(code)
	if err != nil {
		f.fallback = code
		return f
	}
	f.unit = unit

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	f.printer = message.NewPrinter(tag)
	return f
}

// Format renders the amount with the formatter's currency symbol.
func (f *Formatter) Format(amount decimal.Decimal) string {
	if f.fallback != "" {
		return f.fallback + " " + amount.StringFixed(2)
	}
	v, _ := amount.Float64()
	return f.printer.Sprintf("%v", currency.Symbol(f.unit.Amount(v)))
}

// FormatFloat renders a raw float amount. Backend list endpoints report
// totals as floats; cart math stays decimal.
func (f *Formatter) FormatFloat(amount float64) string {
	return f.Format(decimal.NewFromFloat(amount))
}

package core

import (
	"strconv"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders a Money value as a localized currency string. It is a
// plain capability so rendering layers can take it as a dependency without
// knowing which locale machinery sits behind it.
type Formatter func(Money) string

// Display locales per supported currency code.
var formatterLocales = map[string]language.Tag{
	"BRL": language.BrazilianPortuguese,
	"USD": language.AmericanEnglish,
	"EUR": language.Italian,
}

// FormatterFor returns the Formatter for an ISO 4217 currency code.
// Unknown codes fall back to a bare two-decimal rendering so display never
// fails.
func FormatterFor(code string) Formatter {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return func(m Money) string {
			return strconv.FormatFloat(m.Float(), 'f', 2, 64)
		}
	}

	tag, ok := formatterLocales[code]
	if !ok {
		tag = language.BrazilianPortuguese
	}
	p := message.NewPrinter(tag)

	return func(m Money) string {
		return p.Sprint(currency.Symbol(unit.Amount(m.Float())))
	}
}

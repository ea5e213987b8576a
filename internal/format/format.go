// Package format converts between numbers and the monetary, percent and
// grouped-number strings shown to the user.
package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxPrecision is the largest number of digits right of the decimal point.
const MaxPrecision = 4

// ErrPrecision is returned when more than MaxPrecision digits are requested.
var ErrPrecision = errors.New("precision out of range")

// Formatter renders values for one locale and currency.
type Formatter struct {
	printer  *message.Printer
	currency *money.Currency
}

// New creates a Formatter. Unknown locales fall back to en-US and unknown
// currencies to USD.
func New(locale, currency string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(money.USD)
	}
	return &Formatter{
		printer:  message.NewPrinter(tag),
		currency: cur,
	}
}

// Money formats v as a monetary string with digits decimal places.
// Negative amounts are wrapped in parentheses: ($1,234.50).
func (f *Formatter) Money(v float64, digits int) (string, error) {
	if digits < 0 || digits > MaxPrecision {
		return "", ErrPrecision
	}
	fm := f.currency.Formatter()
	fm.Fraction = digits

	d := decimal.NewFromFloat(v).Round(int32(digits))
	minor := d.Abs().Shift(int32(digits)).IntPart()
	s := fm.Format(minor)
	if d.IsNegative() {
		return "(" + s + ")", nil
	}
	return s, nil
}

// Percent formats v as a grouped number followed by a percent sign.
func (f *Formatter) Percent(v float64, digits int) (string, error) {
	s, err := f.Number(v, digits)
	if err != nil {
		return "", err
	}
	return s + "%", nil
}

// Number formats v with locale thousands grouping.
func (f *Formatter) Number(v float64, digits int) (string, error) {
	if digits < 0 || digits > MaxPrecision {
		return "", ErrPrecision
	}
	return f.printer.Sprintf("%."+strconv.Itoa(digits)+"f", v), nil
}

// StringToMoney parses src with StringToDouble and formats it as money.
func (f *Formatter) StringToMoney(src string, digits int) (string, error) {
	return f.Money(StringToDouble(src), digits)
}

// MustMoney is Money for callers that pass a constant precision.
func (f *Formatter) MustMoney(v float64, digits int) string {
	s, err := f.Money(v, digits)
	if err != nil {
		panic(fmt.Sprintf("format: %v", err))
	}
	return s
}

// MustPercent is Percent for callers that pass a constant precision.
func (f *Formatter) MustPercent(v float64, digits int) string {
	s, err := f.Percent(v, digits)
	if err != nil {
		panic(fmt.Sprintf("format: %v", err))
	}
	return s
}

// MustNumber is Number for callers that pass a constant precision.
func (f *Formatter) MustNumber(v float64, digits int) string {
	s, err := f.Number(v, digits)
	if err != nil {
		panic(fmt.Sprintf("format: %v", err))
	}
	return s
}

// ToNumStr removes currency signs, grouping commas, parentheses, percent,
// minus and plus signs. It assumes en-US grouping.
func ToNumStr(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune("$,()%-+", r) {
			return -1
		}
		return r
	}, s)
}

// StringToDouble converts a monetary, percent, grouped or plain number
// string to a float. The sign is dropped along with the other symbols.
// Unparsable input yields 0.
func StringToDouble(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(ToNumStr(s)), 64)
	if err != nil {
		return 0
	}
	return v
}

// UpperCase returns s with all letters upper-cased.
func UpperCase(s string) string {
	return strings.ToUpper(s)
}

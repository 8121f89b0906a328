package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CURRENCY_CODES_SYMBOLS is a map of 3 digit ISO currency codes to their symbols
var CURRENCY_CODES_SYMBOLS = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"aud": "AU$",
	"cad": "CA$",
	"chf": "CHF",
	"sek": "kr",
	"nzd": "NZ$",
	"hkd": "HK$",
	"sgd": "S$",
	"jpy": "¥",
	"cny": "¥",
	"inr": "₹",
	"brl": "R$",
	"rub": "₽",
	"mxn": "MX$",
	"krw": "₩",
	"try": "₺",
	"zar": "R",
	"myr": "RM",
	"ngn": "₦",
	"kes": "KSh",
}

// zeroDecimalCurrencies have no minor unit
var zeroDecimalCurrencies = map[string]bool{
	"jpy": true,
	"krw": true,
	"vnd": true,
	"clp": true,
	"ugx": true,
}

// DefaultCurrency is used when a document carries no currency code
const DefaultCurrency = "USD"

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself
func GetCurrencySymbol(code string) string {
	code = strings.ToLower(code)
	if symbol, ok := CURRENCY_CODES_SYMBOLS[code]; ok {
		return symbol
	}
	return strings.ToUpper(code)
}

// GetCurrencyPrecision returns the number of minor-unit digits of a currency
func GetCurrencyPrecision(code string) int32 {
	if zeroDecimalCurrencies[strings.ToLower(code)] {
		return 0
	}
	return 2
}

// FormatAmount renders an amount rounded to the currency's minor unit,
// with thousands grouping and the currency symbol, e.g. $1,200.00 or -€5.50
func FormatAmount(amount float64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	precision := GetCurrencyPrecision(currency)
	d := decimal.NewFromFloat(amount).Round(precision)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(precision)
	whole, frac, _ := strings.Cut(fixed, ".")

	symbol := GetCurrencySymbol(currency)
	if len([]rune(symbol)) == 3 && symbol == strings.ToUpper(currency) {
		symbol += " "
	}

	out := sign + symbol + groupThousands(whole)
	if frac != "" {
		out += "." + frac
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

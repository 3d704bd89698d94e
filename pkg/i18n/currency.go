package i18n

import (
	"strings"

	"github.com/shopspring/decimal"
)

type currencyFormat struct {
	symbol   string
	prefix   bool // "$12.50" vs "12.50 Kč"
	decimals int32
}

var currencyFormats = map[string]currencyFormat{
	"USD": {"$", true, 2},
	"EUR": {"€", true, 2},
	"GBP": {"£", true, 2},
	"BRL": {"R$", true, 2},
	"JPY": {"¥", true, 0},
	"CNY": {"¥", true, 2},
	"KRW": {"₩", true, 0},
	"INR": {"₹", true, 2},
	"MXN": {"MX$", true, 2},
	"ARS": {"AR$", true, 2},
	"CAD": {"CA$", true, 2},
	"AUD": {"A$", true, 2},
	"CHF": {"CHF", false, 2},
	"CZK": {"Kč", false, 2},
	"PLN": {"zł", false, 2},
	"SEK": {"kr", false, 2},
	"TRY": {"₺", true, 2},
	"ZAR": {"R", true, 2},
}

// FormatAmount renders amount with the currency symbol and the currency's
// usual number of decimals. Unknown codes render as "12.50 XYZ".
//
//	FormatAmount(15.5, "USD")  -> "$15.50"
//	FormatAmount(1500, "JPY")  -> "¥1500"
//	FormatAmount(20, "CZK")    -> "20.00 Kč"
func FormatAmount(amount float64, currencyCode string) string {
	code := strings.ToUpper(currencyCode)
	f, ok := currencyFormats[code]
	if !ok {
		return decimal.NewFromFloat(amount).StringFixed(2) + " " + code
	}

	value := decimal.NewFromFloat(amount).StringFixed(f.decimals)
	if f.prefix {
		if strings.HasPrefix(value, "-") {
			return "-" + f.symbol + value[1:]
		}
		return f.symbol + value
	}
	return value + " " + f.symbol
}

package domain

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var dollars = message.NewPrinter(language.AmericanEnglish)

// FormatAmount renders a dollar amount for legends and tooltips.
//
//	abbr=true:  $1.2B  $3.4M  $5.6K  $999.0  $0
//	abbr=false: $1.2 billion  $3.4 million  $5,600  $999.0  $0
//
// Negative and NaN amounts are "No data". decimal sets the digits after the
// point for scaled and sub-thousand amounts.
func FormatAmount(v float64, abbr bool, decimal int) string {
	if math.IsNaN(v) || v < 0 {
		return "No data"
	}
	if decimal < 0 {
		decimal = 0
	}

	billion, million := "B", "M"
	if !abbr {
		billion, million = " billion", " million"
	}

	switch {
	case v >= 1e9:
		return "$" + fixed(v/1e9, decimal) + billion
	case v >= 1e6:
		return "$" + fixed(v/1e6, decimal) + million
	case v >= 1e3:
		if abbr {
			return "$" + fixed(v/1e3, decimal) + "K"
		}
		return dollars.Sprintf("$%d", int64(math.RoundToEven(v)))
	case v == 0:
		return "$0"
	default:
		return "$" + fixed(v, decimal)
	}
}

// FormatAmountShort is FormatAmount with abbreviations and one decimal.
func FormatAmountShort(v float64) string {
	return FormatAmount(v, true, 1)
}

func fixed(v float64, decimal int) string {
	return strconv.FormatFloat(v, 'f', decimal, 64)
}

package review

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholders for missing values.
const (
	PlaceholderPartNumber  = "N/A"
	PlaceholderValue       = "-"
	PlaceholderProductName = "Unknown Product"
)

// Prices are always rendered in en-US so display and export agree.
var pricePrinter = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders a price as "$1,234.56", or "-" when absent.
func FormatPrice(v *float64) string {
	if v == nil {
		return PlaceholderValue
	}
	if *v < 0 {
		return pricePrinter.Sprintf("-$%.2f", -*v)
	}
	return pricePrinter.Sprintf("$%.2f", *v)
}

func placeholder(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

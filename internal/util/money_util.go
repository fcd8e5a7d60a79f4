package util

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatAmount renders a currency amount for chat messages.
func FormatAmount(amount float64) string {
	return moneyPrinter.Sprintf("%.2f", amount)
}

// FormatIncome renders a daily income with the extra precision the small
// referral increments need.
func FormatIncome(amount float64) string {
	return moneyPrinter.Sprintf("%.3f", amount)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencySymbols = map[string]string{
	"NGN": "₦",
	"USD": "$",
	"GBP": "£",
}

func currencyPrefix(currency string) string {
	if sym, ok := currencySymbols[strings.ToUpper(currency)]; ok {
		return sym
	}
	return strings.ToUpper(currency) + " "
}

// formatAmount renders whole currency units with grouping, e.g. "₦1,500".
func formatAmount(amount int64, currency string) string {
	p := message.NewPrinter(language.English)
	return currencyPrefix(currency) + p.Sprintf("%d", amount)
}

// formatRevenue is the dashboard rendering, e.g. "₦1.2M" above a million.
func formatRevenue(amount int64, currency string) string {
	if amount >= 1_000_000 {
		value, suffix := humanize.ComputeSI(float64(amount))
		return currencyPrefix(currency) + humanize.FtoaWithDigits(value, 1) + suffix
	}
	return currencyPrefix(currency) + humanize.Comma(amount)
}

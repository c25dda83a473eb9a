package billing

import (
	"math"
	"strings"
)

// Number-to-words conversion on the Indian scale (thousand, lakh = 10^5,
// crore = 10^7). The amount is rounded to the nearest rupee first: paise
// never appear in the words line of a printed document.

var onesWords = [...]string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tensWords = [...]string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// numberWords decomposes n recursively: leading group divided out at each
// scale (hundred, thousand, lakh, crore), remainder recursed. This is the
// Indian grouping: after the thousands group every step is a power of 100.
func numberWords(n int64) string {
	switch {
	case n < 20:
		return onesWords[n]
	case n < 100:
		return join(tensWords[n/10], numberWords(n%10))
	case n < 1000:
		return join(onesWords[n/100]+" Hundred", numberWords(n%100))
	case n < 100000:
		return join(numberWords(n/1000)+" Thousand", numberWords(n%1000))
	case n < 10000000:
		return join(numberWords(n/100000)+" Lakh", numberWords(n%100000))
	default:
		return join(numberWords(n/10000000)+" Crore", numberWords(n%10000000))
	}
}

func join(head, tail string) string {
	if tail == "" {
		return head
	}
	return head + " " + tail
}

// RupeesInWords renders a non-negative amount for invoice footers,
// e.g. 212 -> "Two Hundred Twelve Rupees Only".
func RupeesInWords(v float64) string {
	return amountWords(v) + " Rupees Only"
}

// AmountInWords is the quotation variant with the short suffix,
// e.g. 100000 -> "One Lakh Only".
func AmountInWords(v float64) string {
	return amountWords(v) + " Only"
}

func amountWords(v float64) string {
	n := int64(math.Round(v))
	if n <= 0 {
		return "Zero"
	}
	return strings.TrimSpace(numberWords(n))
}

package invoice

import (
	"math"
	"strings"
)

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords converts a non-negative rupee amount into English words using
// the Indian numbering scale (Thousand, Lakh, Crore) followed by
// "Rupees Only". The paise fraction is computed but intentionally never
// printed on the receipt; only whole rupees appear in words.
func AmountInWords(amount float64) string {
	if math.IsNaN(amount) || amount < 0 {
		return "Zero Rupees Only"
	}

	// Converting a float at or beyond 2^63 overflows int64, so amounts that
	// large are capped before the conversion.
	rupees := int64(math.MaxInt64)
	if amount < math.MaxInt64 {
		rupees = int64(math.Floor(amount))
		paise := int64(math.Round((amount - math.Floor(amount)) * 100))
		_ = paise // receipts state whole rupees only
	}

	if rupees == 0 {
		return "Zero Rupees Only"
	}

	return integerWords(rupees) + " Rupees Only"
}

func integerWords(n int64) string {
	switch {
	case n < 20:
		return onesWords[n]
	case n < 100:
		s := tensWords[n/10]
		if n%10 != 0 {
			s += " " + onesWords[n%10]
		}
		return s
	case n < 1000:
		s := onesWords[n/100] + " Hundred"
		if n%100 != 0 {
			s += " " + integerWords(n%100)
		}
		return s
	case n < 100000:
		return scaleWords(n, 1000, "Thousand")
	case n < 10000000:
		return scaleWords(n, 100000, "Lakh")
	default:
		return scaleWords(n, 10000000, "Crore")
	}
}

func scaleWords(n, unit int64, name string) string {
	s := integerWords(n/unit) + " " + name
	if n%unit != 0 {
		s += " " + integerWords(n%unit)
	}
	return strings.TrimSpace(s)
}

package reco

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const gstinLength = 15

// gstinPad fills short GSTINs. It can never appear in a real GSTIN, so a
// padded short value never collides with a genuine 15-character one.
const gstinPad = "#"

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// CleanInvoice reduces an invoice number to its lowercase alphanumerics so
// that "INV/2024-001" and "inv2024001" compare equal.
func CleanInvoice(s string) string {
	return strings.ToLower(nonAlphanumeric.ReplaceAllString(s, ""))
}

// NormalizeGSTIN uppercases the identifier, drops spaces and dashes, and fixes
// the length at 15. A blank GSTIN stays blank.
func NormalizeGSTIN(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "", "-", "").Replace(s)
	if s == "" {
		return ""
	}
	if len(s) > gstinLength {
		return s[:gstinLength]
	}
	return s + strings.Repeat(gstinPad, gstinLength-len(s))
}

// within reports |a-b| < tol.
func within(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tol)
}

// exceeds reports |a-b| > tol.
func exceeds(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().GreaterThan(tol)
}

// amountKey renders an amount the way the index buckets it.
func amountKey(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// gstinCompatible is true unless both GSTINs are present and differ.
func gstinCompatible(a, b string) bool {
	return a == "" || b == "" || a == b
}

package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var amountNoise = strings.NewReplacer(",", "", "₹", "", " ", "", "\u00a0", "")

// ParseAmount reads a spreadsheet amount. Thousands separators and the rupee
// sign are ignored and "(12.50)" is negative. Anything unparseable, including
// NaN and infinities, is zero.
func ParseAmount(s string) decimal.Decimal {
	s = amountNoise.Replace(strings.TrimSpace(s))
	if s == "" || s == "-" {
		return decimal.Zero
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
		d = decimal.NewFromFloat(f)
	}
	if neg {
		d = d.Neg()
	}
	return d
}

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"02-Jan-2006",
	"02-Jan-06",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 02, 2006",
	"01-02-06",
	"2006-01-02 15:04:05",
	"02-01-2006 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate reads a spreadsheet date in day-first layouts or as an Excel
// serial number. It returns nil when nothing matches.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return &t
		}
	}
	return nil
}

// isYes reports whether a flag cell is affirmative.
func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y":
		return true
	}
	return false
}

package ingest

import (
	"fmt"
	"strings"

	"gstreco/internal/domain"
)

// RCMSetName is the set that collects reverse-charge rows from every sheet.
const RCMSetName = "RCM Combined"

var portalSkip = map[string]bool{
	"read me":           true,
	"itc available":     true,
	"itc not available": true,
	"itc reversal":      true,
	"itc rejected":      true,
}

// portalProbeRow names sheets that are dropped when the given 0-based row is
// missing or blank, meaning the portal left them without data.
var portalProbeRow = map[string]int{
	"b2b":                6,
	"b2b-cdnr":           6,
	"eco":                6,
	"isd":                6,
	"impg":               6,
	"impgsez":            6,
	"b2b (itc reversal)": 6,
	"b2b-dnr":            6,
	"b2ba":               7,
	"b2b-cdnra":          7,
}

const headerSearchRows = 10

// ReadPortal reads a GSTR-2B workbook into one record set per data sheet,
// plus a combined set of reverse-charge rows when any exist.
func ReadPortal(u Upload) ([]domain.RecordSet, error) {
	f, err := openWorkbook(u)
	if err != nil {
		return nil, fmt.Errorf("ingest.ReadPortal: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sets []domain.RecordSet
	rcm := domain.RecordSet{Name: RCMSetName, Side: domain.SidePortal}

	for _, sheet := range f.GetSheetList() {
		key := strings.ToLower(strings.TrimSpace(sheet))
		if portalSkip[key] {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("ingest.ReadPortal: sheet %s: %w", sheet, err)
		}
		if probe, ok := portalProbeRow[key]; ok && (len(rows) <= probe || blankRow(rows[probe])) {
			continue
		}

		t := portalTable(rows)
		if t == nil {
			continue
		}

		set := domain.RecordSet{Name: sheet, Side: domain.SidePortal}
		creditNote := strings.Contains(strings.ToUpper(sheet), "CDN")
		for _, row := range t.rows {
			if blankRow(row) {
				continue
			}
			r := t.record(row, sheet)
			if r.InvoiceNumber == "" && r.GSTIN == "" && r.TaxableAmount.IsZero() {
				continue
			}
			r.IsCreditNote = creditNote
			if isYes(t.str(row, fieldReverseCharge)) {
				rcm.Records = append(rcm.Records, r)
				continue
			}
			set.Records = append(set.Records, r)
		}
		if len(set.Records) > 0 {
			sets = append(sets, set)
		}
	}

	if len(rcm.Records) > 0 {
		sets = append(sets, rcm)
	}
	return sets, nil
}

// portalTable locates the header in the first rows of a sheet. Portal sheets
// split headers over two rows where a group caption ("Tax Amount") sits above
// the per-head captions; the lower row wins and the upper fills gaps.
func portalTable(rows [][]string) *table {
	limit := min(headerSearchRows, len(rows))
	for i := 0; i < limit; i++ {
		if !hasMarker(rows[i]) {
			continue
		}
		header := rows[i]
		start := i + 1
		if i+1 < len(rows) && mentionsTax(rows[i+1]) {
			header = mergeHeaders(rows[i], rows[i+1])
			start = i + 2
		}
		if start > len(rows) {
			start = len(rows)
		}
		return newTable(header, rows[start:])
	}
	return nil
}

func hasMarker(row []string) bool {
	for _, c := range row {
		lc := strings.ToLower(c)
		for _, m := range portalHeaderMarkers {
			if strings.Contains(lc, m) {
				return true
			}
		}
	}
	return false
}

func mentionsTax(row []string) bool {
	for _, c := range row {
		if strings.Contains(strings.ToLower(c), "tax") {
			return true
		}
	}
	return false
}

func mergeHeaders(upper, lower []string) []string {
	merged := make([]string, max(len(upper), len(lower)))
	for i := range merged {
		if v := strings.TrimSpace(cellVal(lower, i)); v != "" {
			merged[i] = v
			continue
		}
		merged[i] = strings.TrimSpace(cellVal(upper, i))
	}
	return merged
}

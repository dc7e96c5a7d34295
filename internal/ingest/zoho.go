package ingest

import (
	"fmt"
	"strings"

	"gstreco/internal/domain"
)

var zohoSkip = map[string]bool{
	"imp":              true,
	"imp_services":     true,
	"nil/exempt":       true,
	"hsn":              true,
	"advance paid":     true,
	"advance adjusted": true,
}

// zohoProbe names sheets dropped when their first data row is blank.
var zohoProbe = map[string]bool{
	"b2b":            true,
	"b2bur":          true,
	"dn":             true,
	"dn_ur":          true,
	"reverse charge": true,
}

const (
	zohoHeaderRow = 1
	zohoFirstData = 2
)

// ReadZoho reads a Zoho GSTR-2 export into one record set per data sheet.
// Invoices that appear on the reverse-charge sheet are dropped from b2b.
func ReadZoho(u Upload) ([]domain.RecordSet, error) {
	f, err := openWorkbook(u)
	if err != nil {
		return nil, fmt.Errorf("ingest.ReadZoho: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sets []domain.RecordSet
	keys := map[string]int{}

	for _, sheet := range f.GetSheetList() {
		key := strings.ToLower(strings.TrimSpace(sheet))
		if zohoSkip[key] {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("ingest.ReadZoho: sheet %s: %w", sheet, err)
		}
		if len(rows) <= zohoFirstData || (zohoProbe[key] && blankRow(rows[zohoFirstData])) {
			continue
		}

		t := newTable(rows[zohoHeaderRow], trimAfterLastInvoice(rows[zohoFirstData:], rows[zohoHeaderRow]))
		if !t.has(fieldInvoice) && !t.has(fieldTaxable) {
			continue
		}

		creditNote := key == "dn" || key == "dn_ur" || strings.Contains(key, "cdn")
		set := domain.RecordSet{Name: sheet, Side: domain.SideBooks}
		for _, row := range t.rows {
			if blankRow(row) {
				continue
			}
			r := t.record(row, sheet)
			r.IsCreditNote = creditNote
			set.Records = append(set.Records, r)
		}
		if len(set.Records) == 0 {
			continue
		}
		keys[key] = len(sets)
		sets = append(sets, set)
	}

	b2b, okB2B := keys["b2b"]
	rc, okRC := keys["reverse charge"]
	if okB2B && okRC {
		sets[b2b].Records = withoutInvoices(sets[b2b].Records, sets[rc].Records)
	}
	return sets, nil
}

// trimAfterLastInvoice drops footer rows below the last row with an invoice
// number. Sheets without an invoice column are returned unchanged.
func trimAfterLastInvoice(rows [][]string, header []string) [][]string {
	col, ok := mapHeader(header)[fieldInvoice]
	if !ok {
		return rows
	}
	last := -1
	for i, row := range rows {
		if strings.TrimSpace(cellVal(row, col)) != "" {
			last = i
		}
	}
	return rows[:last+1]
}

func withoutInvoices(records, exclude []domain.TaxRecord) []domain.TaxRecord {
	drop := make(map[string]bool, len(exclude))
	for i := range exclude {
		drop[exclude[i].InvoiceNumber] = true
	}
	kept := records[:0:0]
	for i := range records {
		if !drop[records[i].InvoiceNumber] {
			kept = append(kept, records[i])
		}
	}
	return kept
}

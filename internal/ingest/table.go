package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gstreco/internal/domain"
)

// Upload is one user-supplied file.
type Upload struct {
	Filename string
	Body     io.Reader
}

// table is a sheet body with its header already resolved to fields.
type table struct {
	cols map[field]int
	rows [][]string
}

func newTable(header []string, rows [][]string) *table {
	return &table{cols: mapHeader(header), rows: rows}
}

func (t *table) has(f field) bool {
	_, ok := t.cols[f]
	return ok
}

func (t *table) str(row []string, f field) string {
	i, ok := t.cols[f]
	if !ok {
		return ""
	}
	return strings.TrimSpace(cellVal(row, i))
}

func (t *table) amount(row []string, f field) decimal.Decimal {
	return ParseAmount(t.str(row, f))
}

func (t *table) date(row []string, f field) *time.Time {
	return ParseDate(t.str(row, f))
}

// record builds the common TaxRecord fields from a row.
func (t *table) record(row []string, source string) domain.TaxRecord {
	return domain.TaxRecord{
		InvoiceNumber: t.str(row, fieldInvoice),
		TaxableAmount: t.amount(row, fieldTaxable),
		IGST:          t.amount(row, fieldIGST),
		CGST:          t.amount(row, fieldCGST),
		SGST:          t.amount(row, fieldSGST),
		GSTIN:         t.str(row, fieldGSTIN),
		InvoiceDate:   t.date(row, fieldDate),
		PartyName:     t.str(row, fieldParty),
		SourceLabel:   source,
	}
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// readRows returns the rows of the first sheet of an xlsx upload, or of a
// csv upload.
func readRows(u Upload) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(u.Filename)) {
	case ".csv":
		r := csv.NewReader(u.Body)
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", u.Filename, err)
		}
		return rows, nil
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenReader(u.Body)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", u.Filename, err)
		}
		defer func() { _ = f.Close() }()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%s: %w", u.Filename, domain.ErrUnsupportedFileType)
	}
}

// openWorkbook opens an xlsx upload, rejecting other extensions.
func openWorkbook(u Upload) (*excelize.File, error) {
	switch strings.ToLower(filepath.Ext(u.Filename)) {
	case ".xlsx", ".xlsm":
	default:
		return nil, fmt.Errorf("%s: %w", u.Filename, domain.ErrUnsupportedFileType)
	}
	f, err := excelize.OpenReader(u.Body)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", u.Filename, err)
	}
	return f, nil
}

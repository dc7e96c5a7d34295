package report

import (
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gstreco/internal/domain"
)

// BOM is written ahead of CSV output so Excel on Windows detects UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var csvColumns = []string{
	"Set",
	"GSTIN",
	"Party",
	"Invoice Number",
	"Invoice Date",
	"Source",
	"Credit Note",
	"Taxable",
	"IGST",
	"CGST",
	"SGST",
	"Matched Amount",
	"Difference",
	"Remarks",
	"Counterparts",
}

// CSVWriter writes annotated records as flat CSV rows, one file per side.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(csvColumns)
}

// WriteSets writes every record of the given sets.
func (w *CSVWriter) WriteSets(sets []domain.AnnotatedSet) error {
	for i := range sets {
		for j := range sets[i].Records {
			if err := w.csv.Write(recordToRow(sets[i].Name, &sets[i].Records[j])); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

func recordToRow(set string, r *domain.AnnotatedRecord) []string {
	date := ""
	if r.InvoiceDate != nil {
		date = r.InvoiceDate.Format("2006-01-02")
	}
	counterparts := make([]string, len(r.Result.Counterparts))
	for i, p := range r.Result.Counterparts {
		counterparts[i] = strconv.Itoa(p)
	}
	return []string{
		set,
		r.GSTIN,
		r.PartyName,
		r.InvoiceNumber,
		date,
		r.SourceLabel,
		formatBool(r.IsCreditNote),
		formatMoney(r.TaxableAmount),
		formatMoney(r.IGST),
		formatMoney(r.CGST),
		formatMoney(r.SGST),
		formatMoney(r.Result.MatchedAmount),
		formatMoney(r.Result.Difference),
		string(r.Result.Remark),
		strings.Join(counterparts, " "),
	}
}

func formatMoney(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in a file name. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

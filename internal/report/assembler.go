// Package report renders reconciliation results as an xlsx workbook.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gstreco/internal/domain"
)

const (
	SummarySheet = "Summary"
	OffsetSheet  = "Offset"

	maxSheetName = 31
	totalLabel   = "Filter Total"
)

// Input is everything one report shows.
type Input struct {
	Portal []domain.AnnotatedSet
	Books  []domain.AnnotatedSet
	Offset *domain.OffsetResult
}

var recordHeader = []string{
	"GSTIN", "Party", "Invoice Number", "Invoice Date", "Source",
	"Taxable", "IGST", "CGST", "SGST", "", "Difference", "Remarks",
}

// first and last 1-based columns that get a SUBTOTAL in the total row.
const (
	firstNumericCol = 6
	lastNumericCol  = 11
)

// Build assembles the workbook. The caller owns the returned file and must
// Close it.
func Build(in Input) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("report.Build: %w", err)
	}

	if err := build(f, in); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("report.Build: %w", err)
	}
	return f, nil
}

// Write assembles the workbook and streams it to w.
func Write(w io.Writer, in Input) error {
	f, err := Build(in)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("report.Write: %w", err)
	}
	return nil
}

func build(f *excelize.File, in Input) error {
	if err := writeSummary(f, in); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(SummarySheet): true, strings.ToLower(OffsetSheet): true}
	for _, s := range in.Portal {
		if err := writeRecords(f, uniqueSheetName("Portal - "+s.Name, used), "As per Books", s.Records); err != nil {
			return err
		}
	}
	for _, s := range in.Books {
		if err := writeRecords(f, uniqueSheetName("Books - "+s.Name, used), "As per Portal", s.Records); err != nil {
			return err
		}
	}

	if in.Offset != nil {
		if err := writeOffset(f, in.Offset); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return nil
}

func writeRecords(f *excelize.File, sheet, counterpartLabel string, records []domain.AnnotatedRecord) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	header := make([]interface{}, len(recordHeader))
	for i, h := range recordHeader {
		header[i] = h
	}
	header[9] = counterpartLabel
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i := range records {
		r := &records[i]
		date := ""
		if r.InvoiceDate != nil {
			date = r.InvoiceDate.Format("02-01-2006")
		}
		row := []interface{}{
			r.GSTIN, r.PartyName, r.InvoiceNumber, date, r.SourceLabel,
			num(r.TaxableAmount), num(r.IGST), num(r.CGST), num(r.SGST),
			num(r.Result.MatchedAmount), num(r.Result.Difference), string(r.Result.Remark),
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(recordHeader))
	lastData := len(records) + 1
	if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", lastCol, lastData), nil); err != nil {
		return fmt.Errorf("autofilter %s: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil
	}

	totalRow := lastData + 1
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	if err := f.SetCellStr(sheet, labelCell, totalLabel); err != nil {
		return err
	}
	for col := firstNumericCol; col <= lastNumericCol; col++ {
		name, _ := excelize.ColumnNumberToName(col)
		cell, _ := excelize.CoordinatesToCellName(col, totalRow)
		formula := fmt.Sprintf("SUBTOTAL(9,%s2:%s%d)", name, name, lastData)
		if err := f.SetCellFormula(sheet, cell, formula); err != nil {
			return fmt.Errorf("total formula %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, in Input) error {
	rows := [][]interface{}{{"Direction", "Remark", "Count", "Taxable", "Difference"}}
	for _, dir := range []struct {
		label string
		sets  []domain.AnnotatedSet
	}{
		{"Portal vs Books", in.Portal},
		{"Books vs Portal", in.Books},
	} {
		counts := map[domain.Remark]int{}
		taxable := map[domain.Remark]decimal.Decimal{}
		diff := map[domain.Remark]decimal.Decimal{}
		for _, s := range dir.sets {
			for i := range s.Records {
				r := &s.Records[i]
				k := r.Result.Remark
				counts[k]++
				taxable[k] = taxable[k].Add(r.TaxableAmount)
				diff[k] = diff[k].Add(r.Result.Difference)
			}
		}
		for _, k := range domain.AllRemarks {
			if counts[k] == 0 {
				continue
			}
			rows = append(rows, []interface{}{dir.label, string(k), counts[k], num(taxable[k]), num(diff[k])})
		}
	}

	for i, row := range rows {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func writeOffset(f *excelize.File, res *domain.OffsetResult) error {
	if _, err := f.NewSheet(OffsetSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", OffsetSheet, err)
	}

	vecRow := func(label string, v domain.TaxVector) []interface{} {
		return []interface{}{label, num(v.IGST), num(v.CGST), num(v.SGST)}
	}
	heads := []interface{}{"", "IGST", "CGST", "SGST"}

	rows := [][]interface{}{
		heads,
		vecRow("Output liability", res.Liability),
		vecRow("Input credit", res.Credit),
		nil,
		{"Credit used \\ Liability paid", "IGST", "CGST", "SGST"},
	}
	for _, from := range domain.TaxHeads {
		row := []interface{}{from.String()}
		for _, to := range domain.TaxHeads {
			row = append(row, num(res.Allocation.Paid(from, to)))
		}
		rows = append(rows, row)
	}
	rows = append(rows, nil,
		vecRow("Cash payable", res.CashPayable),
		vecRow("Carry forward", res.CarryForward),
	)

	for i, row := range rows {
		if row == nil {
			continue
		}
		if err := setRow(f, OffsetSheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func num(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

var sheetNameNoise = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")")

// uniqueSheetName makes name a legal, unused sheet name of at most 31
// characters and records it in used.
func uniqueSheetName(name string, used map[string]bool) string {
	base := truncate(sheetNameNoise.Replace(name), maxSheetName)
	candidate := base
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

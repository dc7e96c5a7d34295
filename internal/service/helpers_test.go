package service_test

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gstreco/internal/domain"
	"gstreco/internal/ingest"
)

const (
	gstinA = "27ABCDE1234F1Z5"
	gstinB = "29FGHIJ5678K2Z3"
)

type sheet struct {
	name string
	rows [][]interface{}
}

func xlsxUpload(t *testing.T, filename string, sheets ...sheet) *ingest.Upload {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.name, cell, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return &ingest.Upload{Filename: filename, Body: bytes.NewReader(buf.Bytes())}
}

// portalUpload is a GSTR-2B workbook with a B2B sheet holding INV-001
// (matched in books) and INV-002 (absent from books).
func portalUpload(t *testing.T) *ingest.Upload {
	return xlsxUpload(t, "gstr2b.xlsx", sheet{name: "B2B", rows: [][]interface{}{
		{"Goods and Services Tax - GSTR 2B"},
		{},
		{},
		{},
		{"GSTIN of supplier", "Trade/Legal name", "Invoice details", "", "", "Taxable Value (₹)", "Tax Amount", "", ""},
		{"", "", "Invoice number", "Invoice type", "Invoice Date", "", "Integrated Tax(₹)", "Central Tax(₹)", "State/UT Tax(₹)"},
		{gstinA, "Acme Traders", "INV-001", "Regular", "15/04/2024", 1000, 0, 90, 90},
		{gstinB, "Beta Logistics", "INV-002", "Regular", "16/04/2024", 500, 90, 0, 0},
	}})
}

func zohoUpload(t *testing.T) *ingest.Upload {
	return xlsxUpload(t, "zoho.xlsx", sheet{name: "b2b", rows: [][]interface{}{
		{"GSTR-2 b2b"},
		{"Invoice date", "Invoice Number", "Vendor Name", "GSTIN", "Taxable Value", "IGST Tax Amount", "CGST Tax Amount", "SGST Tax Amount"},
		{"2024-04-15", "INV/001", "Acme", gstinA, 1000, 0, 90, 90},
	}})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func taxRec(invoice, amount, gstin string) domain.TaxRecord {
	return domain.TaxRecord{InvoiceNumber: invoice, TaxableAmount: dec(amount), GSTIN: gstin}
}

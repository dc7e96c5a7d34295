package ingest

import (
	"regexp"
	"strings"
)

// field is a canonical column recognized by the readers.
type field int

const (
	fieldInvoice field = iota
	fieldTaxable
	fieldIGST
	fieldCGST
	fieldSGST
	fieldGSTIN
	fieldDate
	fieldParty
	fieldReverseCharge
	fieldReference
	fieldNumber
	fieldAccount
	fieldDebit
	fieldCredit
)

var headerNoise = regexp.MustCompile(`[^a-z0-9]`)

// headerKey folds a column header to lowercase alphanumerics, so currency
// symbols, slashes and spacing differences between exports disappear.
func headerKey(s string) string {
	return headerNoise.ReplaceAllString(strings.ToLower(s), "")
}

// headerAliases maps every known header, across the portal statement and
// both ERP exports, to its canonical field.
var headerAliases = map[string]field{
	// invoice
	"invoicenumber":           fieldInvoice,
	"invoiceno":               fieldInvoice,
	"notenumber":              fieldInvoice,
	"billofentrynumber":       fieldInvoice,
	"billnumber":              fieldInvoice,
	"noterefundvouchernumber": fieldInvoice,
	"notevouchernumber":       fieldInvoice,

	// taxable value
	"taxablevalue":  fieldTaxable,
	"taxableamt":    fieldTaxable,
	"taxableamount": fieldTaxable,

	// tax heads
	"integratedtax":     fieldIGST,
	"integratedtaxpaid": fieldIGST,
	"igsttaxamount":     fieldIGST,
	"igstamount":        fieldIGST,
	"igst":              fieldIGST,
	"centraltax":        fieldCGST,
	"centraltaxpaid":    fieldCGST,
	"cgsttaxamount":     fieldCGST,
	"cgstamount":        fieldCGST,
	"cgst":              fieldCGST,
	"stateuttax":        fieldSGST,
	"stateuttaxpaid":    fieldSGST,
	"sgsttaxamount":     fieldSGST,
	"sgstamount":        fieldSGST,
	"sgst":              fieldSGST,

	// counterparty
	"gstinofsupplier": fieldGSTIN,
	"suppliergstin":   fieldGSTIN,
	"gstin":           fieldGSTIN,
	"gstinuin":        fieldGSTIN,
	"tradelegalname":  fieldParty,
	"vendorname":      fieldParty,
	"suppliername":    fieldParty,
	"partner":         fieldParty,

	// dates
	"invoicedate":     fieldDate,
	"notedate":        fieldDate,
	"billofentrydate": fieldDate,
	"date":            fieldDate,

	"supplyattractreversecharge": fieldReverseCharge,
	"reversecharge":              fieldReverseCharge,

	// ledger exports
	"reference": fieldReference,
	"number":    fieldNumber,
	"account":   fieldAccount,
	"debit":     fieldDebit,
	"credit":    fieldCredit,
}

// portalHeaderMarkers identify the header row of a portal sheet.
var portalHeaderMarkers = []string{"gstin of supplier", "invoice number", "note number", "bill of entry number"}

// mapHeader resolves column positions. The first column wins when two
// headers alias the same field.
func mapHeader(header []string) map[field]int {
	cols := make(map[field]int)
	for i, h := range header {
		f, ok := headerAliases[headerKey(h)]
		if !ok {
			continue
		}
		if _, seen := cols[f]; !seen {
			cols[f] = i
		}
	}
	return cols
}

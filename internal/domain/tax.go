package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side identifies which statement a record collection came from.
type Side string

const (
	SidePortal Side = "portal"
	SideBooks  Side = "books"
)

// BooksFormat identifies the ERP that produced the books export.
type BooksFormat string

const (
	BooksFormatOdoo BooksFormat = "odoo"
	BooksFormatZoho BooksFormat = "zoho"
)

// Remark classifies the outcome of reconciling a single record.
type Remark string

const (
	RemarkMatch             Remark = "Match"
	RemarkMismatch          Remark = "Mismatch"
	RemarkMatchGrouped      Remark = "Match(Grouped)"
	RemarkMatchTypo         Remark = "Match(Typo)"
	RemarkMatchFuzzy        Remark = "Match(Fuzzy)"
	RemarkMatchGSTINStrict  Remark = "Match(GSTIN-Strict)"
	RemarkMatchGSTINLoose   Remark = "Match(GSTIN-Loose)"
	RemarkMatchConsolidated Remark = "Match(Consolidated)"
	RemarkRateDiff          Remark = "Mismatch (Rate Diff)"
	RemarkNotInBooks        Remark = "Not in Books"
	RemarkNotOnPortal       Remark = "Not on Portal"
	RemarkPreviousPeriod    Remark = "Previous Period Inv"
)

// AllRemarks lists the remark taxonomy in report order.
var AllRemarks = []Remark{
	RemarkMatch,
	RemarkMismatch,
	RemarkMatchGrouped,
	RemarkMatchTypo,
	RemarkMatchFuzzy,
	RemarkMatchGSTINStrict,
	RemarkMatchGSTINLoose,
	RemarkMatchConsolidated,
	RemarkRateDiff,
	RemarkNotInBooks,
	RemarkNotOnPortal,
	RemarkPreviousPeriod,
}

// IsMatch reports whether the remark is one of the Match variants.
func (r Remark) IsMatch() bool {
	return strings.HasPrefix(string(r), "Match")
}

// IsUnmatched reports whether the record found no counterpart.
func (r Remark) IsUnmatched() bool {
	return r == RemarkNotInBooks || r == RemarkNotOnPortal || r == RemarkPreviousPeriod
}

// UnmatchedRemark returns the remark for a record of the given side that has
// no counterpart on the other side.
func UnmatchedRemark(side Side) Remark {
	if side == SidePortal {
		return RemarkNotInBooks
	}
	return RemarkNotOnPortal
}

// TaxRecord is one line item from a books ledger or a portal statement.
// Amounts are always finite; unparseable input is normalized to zero upstream.
type TaxRecord struct {
	InvoiceNumber string          `json:"invoice_number"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	IGST          decimal.Decimal `json:"igst_amount"`
	CGST          decimal.Decimal `json:"cgst_amount"`
	SGST          decimal.Decimal `json:"sgst_amount"`
	GSTIN         string          `json:"gstin"`
	InvoiceDate   *time.Time      `json:"invoice_date,omitempty"`
	PartyName     string          `json:"party_name,omitempty"`
	SourceLabel   string          `json:"source_label"`
	IsCreditNote  bool            `json:"is_credit_note"`
}

// TaxTotal returns IGST + CGST + SGST.
func (r *TaxRecord) TaxTotal() decimal.Decimal {
	return r.IGST.Add(r.CGST).Add(r.SGST)
}

// ReconciliationResult is attached to a record after matching.
type ReconciliationResult struct {
	MatchedAmount decimal.Decimal `json:"matched_amount"`
	Difference    decimal.Decimal `json:"difference"`
	Remark        Remark          `json:"remark"`
	// Counterparts holds the positions, within the counterpart collection, of
	// every record consumed by this match.
	Counterparts []int `json:"counterparts,omitempty"`
}

// AnnotatedRecord pairs a record with its reconciliation outcome.
type AnnotatedRecord struct {
	TaxRecord
	Result ReconciliationResult `json:"result"`
}

// RecordSet is a named collection of records from one side, typically one
// sheet or category of an uploaded workbook.
type RecordSet struct {
	Name    string      `json:"name"`
	Side    Side        `json:"side"`
	Records []TaxRecord `json:"records"`
}

// AnnotatedSet is a RecordSet after reconciliation.
type AnnotatedSet struct {
	Name    string            `json:"name"`
	Side    Side              `json:"side"`
	Records []AnnotatedRecord `json:"records"`
}

// RemarkCounts tallies records per remark.
type RemarkCounts map[Remark]int

// CountRemarks tallies the remarks of the given records.
func CountRemarks(records []AnnotatedRecord) RemarkCounts {
	counts := make(RemarkCounts)
	for i := range records {
		counts[records[i].Result.Remark]++
	}
	return counts
}

// Unmatched returns the number of records without a counterpart.
func (c RemarkCounts) Unmatched() int {
	n := 0
	for remark, count := range c {
		if remark.IsUnmatched() {
			n += count
		}
	}
	return n
}

// Mismatched returns the number of records matched with a discrepancy.
func (c RemarkCounts) Mismatched() int {
	return c[RemarkMismatch] + c[RemarkRateDiff]
}

package domain

import "github.com/shopspring/decimal"

// TaxHead is one of the three GST components tracked separately by statute.
type TaxHead int

const (
	HeadIGST TaxHead = iota
	HeadCGST
	HeadSGST
)

// TaxHeads lists the heads in display order.
var TaxHeads = []TaxHead{HeadIGST, HeadCGST, HeadSGST}

func (h TaxHead) String() string {
	switch h {
	case HeadIGST:
		return "IGST"
	case HeadCGST:
		return "CGST"
	case HeadSGST:
		return "SGST"
	default:
		return "UNKNOWN"
	}
}

// TaxVector is an (IGST, CGST, SGST) triple. It is used both for output tax
// liability and for input tax credit.
type TaxVector struct {
	IGST decimal.Decimal `json:"igst"`
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
}

// Get returns the component for the given head.
func (v TaxVector) Get(h TaxHead) decimal.Decimal {
	switch h {
	case HeadIGST:
		return v.IGST
	case HeadCGST:
		return v.CGST
	default:
		return v.SGST
	}
}

// Set replaces the component for the given head.
func (v *TaxVector) Set(h TaxHead, amount decimal.Decimal) {
	switch h {
	case HeadIGST:
		v.IGST = amount
	case HeadCGST:
		v.CGST = amount
	default:
		v.SGST = amount
	}
}

// Add returns the component-wise sum.
func (v TaxVector) Add(o TaxVector) TaxVector {
	return TaxVector{IGST: v.IGST.Add(o.IGST), CGST: v.CGST.Add(o.CGST), SGST: v.SGST.Add(o.SGST)}
}

// Total returns IGST + CGST + SGST.
func (v TaxVector) Total() decimal.Decimal {
	return v.IGST.Add(v.CGST).Add(v.SGST)
}

// Allocation records how much credit of one head paid liability of another.
// Indexed [from credit head][to liability head].
type Allocation [3][3]decimal.Decimal

// Paid returns the amount of `from` credit applied against `to` liability.
func (a *Allocation) Paid(from, to TaxHead) decimal.Decimal {
	return a[from][to]
}

// AllocationEntry is one cell of the allocation matrix, for display.
type AllocationEntry struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Entries flattens the matrix in head order.
func (a *Allocation) Entries() []AllocationEntry {
	entries := make([]AllocationEntry, 0, len(TaxHeads)*len(TaxHeads))
	for _, from := range TaxHeads {
		for _, to := range TaxHeads {
			entries = append(entries, AllocationEntry{From: from.String(), To: to.String(), Amount: a[from][to]})
		}
	}
	return entries
}

// OffsetResult is the outcome of a statutory set-off computation.
type OffsetResult struct {
	Liability    TaxVector         `json:"liability"`
	Credit       TaxVector         `json:"credit"`
	Allocation   Allocation        `json:"-"`
	Entries      []AllocationEntry `json:"allocation"`
	CashPayable  TaxVector         `json:"cash_payable"`
	CarryForward TaxVector         `json:"carry_forward"`
}

// OffsetInput carries the manually supplied figures for the offset dashboard.
type OffsetInput struct {
	OpeningCredit   TaxVector `json:"opening_credit"`
	OutputLiability TaxVector `json:"output_liability"`
}

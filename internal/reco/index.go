package reco

import (
	"sort"

	"github.com/shopspring/decimal"

	"gstreco/internal/domain"
)

// indexEpsilon is the smallest taxable amount that keeps an invoice-less
// record in the index.
var indexEpsilon = decimal.New(1, -2)

// Candidate is an indexed counterpart record with its match keys precomputed.
type Candidate struct {
	// ID is the candidate's ordinal within the index and the slot it occupies
	// in a run's consumption set.
	ID int
	// Position is the record's position in the collection passed to BuildIndex.
	Position int
	Invoice  string
	GSTIN    string
	Amount   decimal.Decimal
	IGST     decimal.Decimal
	CGST     decimal.Decimal
	SGST     decimal.Decimal
	Tax      decimal.Decimal
}

type exactKey struct {
	invoice string
	amount  string
	gstin   string
}

type invoiceKey struct {
	invoice string
	gstin   string
}

// Index is an immutable lookup structure over one side's records. It is never
// mutated after BuildIndex returns, so it may be shared by concurrent runs.
type Index struct {
	candidates []Candidate
	exact      map[exactKey][]int
	byInvoice  map[invoiceKey][]int
	byAmount   map[string][]int
	byGSTIN    map[string][]int
}

// BuildIndex indexes records for lookup by exact key, invoice key, amount and
// GSTIN. Records with neither an invoice number nor a meaningful taxable
// amount are left out.
func BuildIndex(records []domain.TaxRecord) *Index {
	idx := &Index{
		exact:     make(map[exactKey][]int),
		byInvoice: make(map[invoiceKey][]int),
		byAmount:  make(map[string][]int),
		byGSTIN:   make(map[string][]int),
	}

	for pos := range records {
		rec := &records[pos]
		invoice := CleanInvoice(rec.InvoiceNumber)
		if invoice == "" && rec.TaxableAmount.Abs().LessThanOrEqual(indexEpsilon) {
			continue
		}

		c := Candidate{
			ID:       len(idx.candidates),
			Position: pos,
			Invoice:  invoice,
			GSTIN:    NormalizeGSTIN(rec.GSTIN),
			Amount:   rec.TaxableAmount,
			IGST:     rec.IGST,
			CGST:     rec.CGST,
			SGST:     rec.SGST,
			Tax:      rec.TaxTotal(),
		}
		idx.candidates = append(idx.candidates, c)

		if invoice != "" {
			ek := exactKey{invoice: invoice, amount: amountKey(c.Amount), gstin: c.GSTIN}
			idx.exact[ek] = append(idx.exact[ek], c.ID)
			ik := invoiceKey{invoice: invoice, gstin: c.GSTIN}
			idx.byInvoice[ik] = append(idx.byInvoice[ik], c.ID)
		}
		ak := amountKey(c.Amount)
		idx.byAmount[ak] = append(idx.byAmount[ak], c.ID)
		if c.GSTIN != "" {
			idx.byGSTIN[c.GSTIN] = append(idx.byGSTIN[c.GSTIN], c.ID)
		}
	}

	return idx
}

// Len returns the number of indexed candidates.
func (idx *Index) Len() int {
	return len(idx.candidates)
}

// Candidate returns the candidate with the given ID.
func (idx *Index) Candidate(id int) *Candidate {
	return &idx.candidates[id]
}

func (idx *Index) exactMatches(invoice string, amount decimal.Decimal, gstin string) []int {
	return idx.exact[exactKey{invoice: invoice, amount: amountKey(amount), gstin: gstin}]
}

func (idx *Index) invoiceMatches(invoice, gstin string) []int {
	return idx.byInvoice[invoiceKey{invoice: invoice, gstin: gstin}]
}

func (idx *Index) gstinMatches(gstin string) []int {
	return idx.byGSTIN[gstin]
}

// nearAmount returns, in ID order, every candidate whose bucketed amount lies
// within tol of amount. Callers must still apply the exact tolerance check
// since bucketing rounds to the cent.
func (idx *Index) nearAmount(amount, tol decimal.Decimal) []int {
	base := amount.Round(2)
	cents := tol.Shift(2).Ceil().IntPart()
	var ids []int
	for k := -cents; k <= cents; k++ {
		ids = append(ids, idx.byAmount[amountKey(base.Add(decimal.New(k, -2)))]...)
	}
	sort.Ints(ids)
	return ids
}

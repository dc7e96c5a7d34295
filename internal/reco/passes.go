package reco

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"gstreco/internal/domain"
)

// subject is a record being reconciled, with its match keys precomputed.
type subject struct {
	position int
	invoice  string
	gstin    string
	amount   decimal.Decimal
	igst     decimal.Decimal
	cgst     decimal.Decimal
	tax      decimal.Decimal
}

func newSubject(pos int, rec *domain.TaxRecord) subject {
	return subject{
		position: pos,
		invoice:  CleanInvoice(rec.InvoiceNumber),
		gstin:    NormalizeGSTIN(rec.GSTIN),
		amount:   rec.TaxableAmount,
		igst:     rec.IGST,
		cgst:     rec.CGST,
		tax:      rec.TaxTotal(),
	}
}

// decision is what a pass proposes for one record. The engine applies it.
type decision struct {
	candidates []int
	matched    decimal.Decimal
	remark     domain.Remark
	// rateCheck marks single-candidate matches subject to the tax-sum check.
	rateCheck bool
}

// recordPass inspects one unmatched record against the unclaimed candidates.
// It must not mutate c.
type recordPass func(e *Engine, s *subject, idx *Index, c *claims) *decision

// matchExact looks up the full (invoice, amount, gstin) key. When that misses
// but the record's (invoice, gstin) key has a single unclaimed candidate
// within tolerance, the pair is still an exact match.
func matchExact(e *Engine, s *subject, idx *Index, c *claims) *decision {
	if s.invoice == "" {
		return nil
	}

	id := -1
	for _, cand := range idx.exactMatches(s.invoice, s.amount, s.gstin) {
		if c.available(cand) {
			id = cand
			break
		}
	}
	if id < 0 {
		id = soleKeyCandidate(s, idx, c)
	}
	if id < 0 {
		return nil
	}

	cand := idx.Candidate(id)
	if !within(s.amount, cand.Amount, e.th.AmountTolerance) {
		return nil
	}
	return &decision{candidates: []int{id}, matched: cand.Amount, remark: domain.RemarkMatch, rateCheck: true}
}

// matchKeyMismatch runs after consolidation. A record that still shares its
// (invoice, gstin) key with exactly one unclaimed candidate is paired with it
// as a Mismatch: same invoice, amounts outside tolerance.
func matchKeyMismatch(_ *Engine, s *subject, idx *Index, c *claims) *decision {
	id := soleKeyCandidate(s, idx, c)
	if id < 0 {
		return nil
	}
	return &decision{candidates: []int{id}, matched: idx.Candidate(id).Amount, remark: domain.RemarkMismatch}
}

// soleKeyCandidate returns the only unclaimed candidate sharing the record's
// (invoice, gstin) key, or -1.
func soleKeyCandidate(s *subject, idx *Index, c *claims) int {
	if s.invoice == "" {
		return -1
	}
	open := c.filter(idx.invoiceMatches(s.invoice, s.gstin))
	if len(open) != 1 {
		return -1
	}
	return open[0]
}

// matchGrouped handles a single invoice split across several counterpart
// lines, typically one per tax rate.
func matchGrouped(e *Engine, s *subject, idx *Index, c *claims) *decision {
	if s.invoice == "" || s.gstin == "" {
		return nil
	}
	group := c.filter(idx.invoiceMatches(s.invoice, s.gstin))
	if len(group) < 2 {
		return nil
	}
	sum := decimal.Zero
	for _, id := range group {
		sum = sum.Add(idx.Candidate(id).Amount)
	}
	if !within(s.amount, sum, e.th.AmountTolerance) {
		return nil
	}
	return &decision{candidates: group, matched: sum, remark: domain.RemarkMatchGrouped}
}

func matchTypo(e *Engine, s *subject, idx *Index, c *claims) *decision {
	if s.invoice == "" {
		return nil
	}
	for _, id := range c.filter(idx.nearAmount(s.amount, e.th.AmountTolerance)) {
		cand := idx.Candidate(id)
		if cand.Invoice == "" || !within(s.amount, cand.Amount, e.th.AmountTolerance) || !gstinCompatible(s.gstin, cand.GSTIN) {
			continue
		}
		if Similarity(s.invoice, cand.Invoice) > e.th.TypoSimilarity {
			return &decision{candidates: []int{id}, matched: cand.Amount, remark: domain.RemarkMatchTypo, rateCheck: true}
		}
	}
	return nil
}

func matchFuzzy(e *Engine, s *subject, idx *Index, c *claims) *decision {
	if len(s.invoice) <= e.th.FuzzyMinLength {
		return nil
	}
	tol := e.th.AmountTolerance
	for _, id := range c.filter(idx.nearAmount(s.amount, tol)) {
		cand := idx.Candidate(id)
		if len(cand.Invoice) <= e.th.FuzzyMinLength {
			continue
		}
		if !within(s.amount, cand.Amount, tol) || !within(s.igst, cand.IGST, tol) || !gstinCompatible(s.gstin, cand.GSTIN) {
			continue
		}
		if strings.Contains(s.invoice, cand.Invoice) || strings.Contains(cand.Invoice, s.invoice) {
			return &decision{candidates: []int{id}, matched: cand.Amount, remark: domain.RemarkMatchFuzzy, rateCheck: true}
		}
	}
	return nil
}

func matchGSTINStrict(e *Engine, s *subject, idx *Index, c *claims) *decision {
	return matchGSTIN(e, s, idx, c, true)
}

func matchGSTINLoose(e *Engine, s *subject, idx *Index, c *claims) *decision {
	return matchGSTIN(e, s, idx, c, false)
}

func matchGSTIN(e *Engine, s *subject, idx *Index, c *claims, strict bool) *decision {
	if s.gstin == "" {
		return nil
	}
	tol := e.th.AmountTolerance
	for _, id := range c.filter(idx.gstinMatches(s.gstin)) {
		cand := idx.Candidate(id)
		if !within(s.amount, cand.Amount, tol) {
			continue
		}
		if strict && (!within(s.igst, cand.IGST, tol) || !within(s.cgst, cand.CGST, tol)) {
			continue
		}
		remark := domain.RemarkMatchGSTINLoose
		if strict {
			remark = domain.RemarkMatchGSTINStrict
		}
		return &decision{candidates: []int{id}, matched: cand.Amount, remark: remark, rateCheck: true}
	}
	return nil
}

// Similarity returns the Levenshtein ratio of two strings in [0, 1].
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}

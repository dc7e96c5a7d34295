package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gstreco/internal/domain"
	"gstreco/internal/offset"
	"gstreco/internal/reco"
)

// Outcome is the result of reconciling one portal statement against books.
type Outcome struct {
	Portal       []domain.AnnotatedSet
	Books        []domain.AnnotatedSet
	PortalCounts domain.RemarkCounts
	BooksCounts  domain.RemarkCounts
	// Offset is nil when no manual offset figures were supplied.
	Offset *domain.OffsetResult
	// CreditClamped is set when netted credit notes drove a head below zero.
	CreditClamped bool
}

// Reconcile matches every portal set against all books records and every
// books set against all portal records, then computes the set-off when
// manual figures are given. It has no side effects.
func Reconcile(ctx context.Context, engine *reco.Engine, portal, books []domain.RecordSet, periodStart *time.Time, manual *domain.OffsetInput) (*Outcome, error) {
	portalRecs, portalBounds := flatten(portal)
	booksRecs, booksBounds := flatten(books)

	portalIdx := reco.BuildIndex(portalRecs)
	booksIdx := reco.BuildIndex(booksRecs)

	portalOut, err := engine.Reconcile(ctx, portalRecs, booksIdx, domain.SidePortal, periodStart)
	if err != nil {
		return nil, fmt.Errorf("portal vs books: %w", err)
	}
	booksOut, err := engine.Reconcile(ctx, booksRecs, portalIdx, domain.SideBooks, nil)
	if err != nil {
		return nil, fmt.Errorf("books vs portal: %w", err)
	}

	out := &Outcome{
		Portal:       split(portal, portalBounds, portalOut),
		Books:        split(books, booksBounds, booksOut),
		PortalCounts: domain.CountRemarks(portalOut),
		BooksCounts:  domain.CountRemarks(booksOut),
	}

	if manual != nil {
		credit, clamped := EligibleCredit(manual.OpeningCredit, portalOut)
		res, err := offset.Calculate(manual.OutputLiability, credit)
		if err != nil {
			return nil, fmt.Errorf("offset: %w", err)
		}
		out.Offset = res
		out.CreditClamped = clamped
	}
	return out, nil
}

// EligibleCredit adds the tax of matched portal records to the opening
// credit. Credit notes reduce the credit. A head that would go negative is
// floored at zero and reported through the second return value.
func EligibleCredit(opening domain.TaxVector, portal []domain.AnnotatedRecord) (domain.TaxVector, bool) {
	credit := opening
	for i := range portal {
		r := &portal[i]
		if !r.Result.Remark.IsMatch() {
			continue
		}
		tax := domain.TaxVector{IGST: r.IGST, CGST: r.CGST, SGST: r.SGST}
		if r.IsCreditNote {
			tax = domain.TaxVector{IGST: r.IGST.Abs().Neg(), CGST: r.CGST.Abs().Neg(), SGST: r.SGST.Abs().Neg()}
		}
		credit = credit.Add(tax)
	}

	clamped := false
	for _, h := range domain.TaxHeads {
		if credit.Get(h).IsNegative() {
			credit.Set(h, decimal.Zero)
			clamped = true
		}
	}
	return credit, clamped
}

// flatten concatenates the sets and returns the end offset of each.
func flatten(sets []domain.RecordSet) ([]domain.TaxRecord, []int) {
	var records []domain.TaxRecord
	bounds := make([]int, len(sets))
	for i := range sets {
		records = append(records, sets[i].Records...)
		bounds[i] = len(records)
	}
	return records, bounds
}

func split(sets []domain.RecordSet, bounds []int, annotated []domain.AnnotatedRecord) []domain.AnnotatedSet {
	out := make([]domain.AnnotatedSet, len(sets))
	start := 0
	for i := range sets {
		out[i] = domain.AnnotatedSet{
			Name:    sets[i].Name,
			Side:    sets[i].Side,
			Records: annotated[start:bounds[i]],
		}
		start = bounds[i]
	}
	return out
}

func recordCount(sets []domain.RecordSet) int {
	n := 0
	for i := range sets {
		n += len(sets[i].Records)
	}
	return n
}

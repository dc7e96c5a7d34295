package reco

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"gstreco/internal/domain"
)

// Engine runs the multi-pass matcher. It holds no per-run state and is safe
// for concurrent use.
type Engine struct {
	th  Thresholds
	log logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger for per-pass statistics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an engine. Zero-valued thresholds fall back to defaults.
func NewEngine(th Thresholds, opts ...Option) *Engine {
	e := &Engine{th: th.withDefaults()}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		e.log = l
	}
	return e
}

// Thresholds returns the effective thresholds.
func (e *Engine) Thresholds() Thresholds {
	return e.th
}

type namedPass struct {
	name string
	fn   recordPass
}

// recordPasses run in this order; each sees the claims left by the previous.
var recordPasses = []namedPass{
	{"exact", matchExact},
	{"grouped", matchGrouped},
	{"typo", matchTypo},
	{"fuzzy", matchFuzzy},
	{"gstin-strict", matchGSTINStrict},
	{"gstin-loose", matchGSTINLoose},
}

// sweepPasses run after the consolidated pass, over what it left unmatched.
var sweepPasses = []namedPass{
	{"key-mismatch", matchKeyMismatch},
}

// Reconcile matches records against the counterpart index and returns one
// annotated record per input record, in input order. Records on the portal
// side dated before periodStart that find no counterpart are flagged as
// previous-period invoices.
//
// The index is not modified; every call owns its own consumption set. On
// cancellation no partial result is returned.
func (e *Engine) Reconcile(ctx context.Context, records []domain.TaxRecord, idx *Index, side domain.Side, periodStart *time.Time) ([]domain.AnnotatedRecord, error) {
	subjects := make([]subject, len(records))
	for i := range records {
		subjects[i] = newSubject(i, &records[i])
	}

	c := newClaims(idx.Len())
	results := make([]*domain.ReconciliationResult, len(records))

	if err := e.runPasses(ctx, recordPasses, subjects, results, idx, c, side); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reco.Reconcile: consolidated pass: %w", err)
	}
	if err := e.consolidate(subjects, results, idx, c); err != nil {
		return nil, fmt.Errorf("reco.Reconcile: consolidated pass: %w", err)
	}

	if err := e.runPasses(ctx, sweepPasses, subjects, results, idx, c, side); err != nil {
		return nil, err
	}

	out := make([]domain.AnnotatedRecord, len(records))
	for i := range records {
		out[i].TaxRecord = records[i]
		if results[i] != nil {
			out[i].Result = *results[i]
			continue
		}
		out[i].Result = unmatchedResult(&records[i], side, periodStart)
	}
	return out, nil
}

// runPasses offers every still-unmatched record to each pass in turn.
func (e *Engine) runPasses(ctx context.Context, passes []namedPass, subjects []subject, results []*domain.ReconciliationResult, idx *Index, c *claims, side domain.Side) error {
	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("reco.Reconcile: %s pass: %w", p.name, err)
		}
		matched := 0
		for i := range subjects {
			if results[i] != nil {
				continue
			}
			d := p.fn(e, &subjects[i], idx, c)
			if d == nil {
				continue
			}
			res, err := e.apply(&subjects[i], d, idx, c)
			if err != nil {
				return fmt.Errorf("reco.Reconcile: %s pass: %w", p.name, err)
			}
			results[i] = res
			matched++
		}
		e.log.WithFields(logrus.Fields{"pass": p.name, "side": side, "matched": matched}).Debug("reconcile pass complete")
	}
	return nil
}

// Reconcile runs a default-threshold engine.
func Reconcile(ctx context.Context, records []domain.TaxRecord, idx *Index, side domain.Side, periodStart *time.Time) ([]domain.AnnotatedRecord, error) {
	return NewEngine(DefaultThresholds()).Reconcile(ctx, records, idx, side, periodStart)
}

// apply claims the decision's candidates and builds the result.
func (e *Engine) apply(s *subject, d *decision, idx *Index, c *claims) (*domain.ReconciliationResult, error) {
	if err := c.claim(d.candidates); err != nil {
		return nil, err
	}

	remark := d.remark
	if d.rateCheck && remark.IsMatch() {
		cand := idx.Candidate(d.candidates[0])
		if exceeds(s.tax, cand.Tax, e.th.AmountTolerance) {
			remark = domain.RemarkRateDiff
		}
	}

	return &domain.ReconciliationResult{
		MatchedAmount: d.matched,
		Difference:    s.amount.Sub(d.matched),
		Remark:        remark,
		Counterparts:  positions(idx, d.candidates),
	}, nil
}

// consolidate compares, per GSTIN, the total of still-unmatched records with
// the total of still-unclaimed candidates and matches both groups wholesale
// when they agree.
func (e *Engine) consolidate(subjects []subject, results []*domain.ReconciliationResult, idx *Index, c *claims) error {
	var order []string
	groups := make(map[string][]int)
	for i := range subjects {
		g := subjects[i].gstin
		if results[i] != nil || g == "" {
			continue
		}
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], i)
	}

	for _, g := range order {
		open := c.filter(idx.gstinMatches(g))
		if len(open) == 0 {
			continue
		}
		own := decimal.Zero
		for _, i := range groups[g] {
			own = own.Add(subjects[i].amount)
		}
		theirs := decimal.Zero
		for _, id := range open {
			theirs = theirs.Add(idx.Candidate(id).Amount)
		}
		if !within(own, theirs, e.th.ConsolidatedTolerance) {
			continue
		}
		if err := c.claim(open); err != nil {
			return err
		}
		counterparts := positions(idx, open)
		for _, i := range groups[g] {
			results[i] = &domain.ReconciliationResult{
				MatchedAmount: subjects[i].amount,
				Difference:    decimal.Zero,
				Remark:        domain.RemarkMatchConsolidated,
				Counterparts:  counterparts,
			}
		}
	}
	return nil
}

func unmatchedResult(rec *domain.TaxRecord, side domain.Side, periodStart *time.Time) domain.ReconciliationResult {
	remark := domain.UnmatchedRemark(side)
	if side == domain.SidePortal && periodStart != nil && rec.InvoiceDate != nil && rec.InvoiceDate.Before(*periodStart) {
		remark = domain.RemarkPreviousPeriod
	}
	return domain.ReconciliationResult{
		MatchedAmount: decimal.Zero,
		Difference:    rec.TaxableAmount,
		Remark:        remark,
	}
}

func positions(idx *Index, ids []int) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = idx.Candidate(id).Position
	}
	return out
}

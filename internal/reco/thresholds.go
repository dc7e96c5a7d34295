package reco

import "github.com/shopspring/decimal"

// Thresholds tunes the matcher. All comparisons are strict.
type Thresholds struct {
	// AmountTolerance bounds taxable-amount and per-head tax differences.
	AmountTolerance decimal.Decimal
	// ConsolidatedTolerance bounds the per-GSTIN aggregate difference.
	ConsolidatedTolerance decimal.Decimal
	// TypoSimilarity is the minimum edit-distance ratio, exclusive.
	TypoSimilarity float64
	// FuzzyMinLength is the length both invoice numbers must exceed before
	// substring containment is trusted.
	FuzzyMinLength int
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AmountTolerance:       decimal.NewFromInt(2),
		ConsolidatedTolerance: decimal.NewFromInt(5),
		TypoSimilarity:        0.85,
		FuzzyMinLength:        3,
	}
}

// withDefaults fills zero fields from DefaultThresholds.
func (t Thresholds) withDefaults() Thresholds {
	def := DefaultThresholds()
	if !t.AmountTolerance.IsPositive() {
		t.AmountTolerance = def.AmountTolerance
	}
	if !t.ConsolidatedTolerance.IsPositive() {
		t.ConsolidatedTolerance = def.ConsolidatedTolerance
	}
	if t.TypoSimilarity <= 0 || t.TypoSimilarity >= 1 {
		t.TypoSimilarity = def.TypoSimilarity
	}
	if t.FuzzyMinLength <= 0 {
		t.FuzzyMinLength = def.FuzzyMinLength
	}
	return t
}

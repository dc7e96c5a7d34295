package reco

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstreco/internal/domain"
)

func TestCleanInvoice(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"INV-001", "inv001"},
		{" inv/2024/00123 ", "inv202400123"},
		{"Bill #77 (a)", "bill77a"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanInvoice(tt.in), tt.in)
	}
}

func TestNormalizeGSTIN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"27abcde1234f1z5", "27ABCDE1234F1Z5"},
		{"27-ABCDE 1234F1Z5", "27ABCDE1234F1Z5"},
		{"27ABCDE1234F1Z5XYZ", "27ABCDE1234F1Z5"},
		{"27ABC", "27ABC##########"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeGSTIN(tt.in), tt.in)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("inv202400123", "inv202400123"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Greater(t, Similarity("inv202400123", "inv20240o123"), 0.85)
	assert.Less(t, Similarity("inv1234", "poinv1234a"), 0.85)
}

func TestBuildIndex(t *testing.T) {
	records := []domain.TaxRecord{
		rec("INV-1", "100.00", gstinA),
		rec("", "0", gstinA),      // no invoice, no amount: dropped
		rec("", "0.005", ""),      // below epsilon: dropped
		rec("", "250.00", gstinB), // amount only
		rec("INV-1", "100.004", gstinA),
	}

	idx := BuildIndex(records)

	require.Equal(t, 3, idx.Len())
	assert.Equal(t, 0, idx.Candidate(0).Position)
	assert.Equal(t, 3, idx.Candidate(1).Position)
	assert.Equal(t, 4, idx.Candidate(2).Position)

	assert.Equal(t, []int{0, 2}, idx.exactMatches("inv1", decimal.RequireFromString("100"), gstinA))
	assert.Equal(t, []int{0, 2}, idx.invoiceMatches("inv1", gstinA))
	assert.Equal(t, []int{1}, idx.gstinMatches(gstinB))
	assert.Empty(t, idx.exactMatches("", decimal.RequireFromString("250"), gstinB))
}

func TestIndex_NearAmount(t *testing.T) {
	idx := BuildIndex([]domain.TaxRecord{
		rec("A", "1002.00", ""),
		rec("B", "998.01", ""),
		rec("C", "1000.00", ""),
		rec("D", "1003.00", ""),
	})

	got := idx.nearAmount(decimal.RequireFromString("1000"), decimal.NewFromInt(2))

	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestClaims(t *testing.T) {
	c := newClaims(3)

	require.NoError(t, c.claim([]int{0, 2}))
	assert.False(t, c.available(0))
	assert.True(t, c.available(1))
	assert.Equal(t, []int{1}, c.filter([]int{0, 1, 2}))

	err := c.claim([]int{1, 2})
	require.ErrorIs(t, err, domain.ErrCandidateReused)
	assert.True(t, c.available(1), "failed claim must not consume anything")
}

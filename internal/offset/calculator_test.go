package offset

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstreco/internal/domain"
)

func vec(igst, cgst, sgst int64) domain.TaxVector {
	return domain.TaxVector{
		IGST: decimal.NewFromInt(igst),
		CGST: decimal.NewFromInt(cgst),
		SGST: decimal.NewFromInt(sgst),
	}
}

func assertVec(t *testing.T, want, got domain.TaxVector) {
	t.Helper()
	for _, h := range domain.TaxHeads {
		assert.True(t, want.Get(h).Equal(got.Get(h)), "%s: want %s, got %s", h, want.Get(h), got.Get(h))
	}
}

func assertPaid(t *testing.T, res *domain.OffsetResult, from, to domain.TaxHead, want int64) {
	t.Helper()
	got := res.Allocation.Paid(from, to)
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "%s->%s: want %d, got %s", from, to, want, got)
}

func TestCalculate_IGSTExhaustedFirst(t *testing.T) {
	res, err := Calculate(vec(100, 50, 50), vec(120, 0, 0))
	require.NoError(t, err)

	assertPaid(t, res, domain.HeadIGST, domain.HeadIGST, 100)
	assertPaid(t, res, domain.HeadIGST, domain.HeadCGST, 20)
	assertPaid(t, res, domain.HeadIGST, domain.HeadSGST, 0)
	assertVec(t, vec(0, 0, 0), res.CarryForward)
	assertVec(t, vec(0, 30, 50), res.CashPayable)
}

func TestCalculate_CrossUtilization(t *testing.T) {
	tests := []struct {
		name         string
		liability    domain.TaxVector
		credit       domain.TaxVector
		paid         map[[2]domain.TaxHead]int64
		cashPayable  domain.TaxVector
		carryForward domain.TaxVector
	}{
		{
			name:      "IGST spills into SGST after CGST",
			liability: vec(0, 30, 40),
			credit:    vec(50, 0, 0),
			paid: map[[2]domain.TaxHead]int64{
				{domain.HeadIGST, domain.HeadCGST}: 30,
				{domain.HeadIGST, domain.HeadSGST}: 20,
			},
			cashPayable:  vec(0, 0, 20),
			carryForward: vec(0, 0, 0),
		},
		{
			name:      "CGST and SGST credit settle IGST liability",
			liability: vec(100, 10, 10),
			credit:    vec(0, 60, 60),
			paid: map[[2]domain.TaxHead]int64{
				{domain.HeadCGST, domain.HeadCGST}: 10,
				{domain.HeadCGST, domain.HeadIGST}: 50,
				{domain.HeadSGST, domain.HeadSGST}: 10,
				{domain.HeadSGST, domain.HeadIGST}: 50,
			},
			cashPayable:  vec(0, 0, 0),
			carryForward: vec(0, 0, 0),
		},
		{
			name:         "CGST credit never pays SGST",
			liability:    vec(0, 0, 100),
			credit:       vec(0, 100, 0),
			paid:         map[[2]domain.TaxHead]int64{},
			cashPayable:  vec(0, 0, 100),
			carryForward: vec(0, 100, 0),
		},
		{
			name:         "no credit",
			liability:    vec(10, 20, 30),
			credit:       vec(0, 0, 0),
			paid:         map[[2]domain.TaxHead]int64{},
			cashPayable:  vec(10, 20, 30),
			carryForward: vec(0, 0, 0),
		},
		{
			name:         "zero liability keeps all credit",
			liability:    vec(0, 0, 0),
			credit:       vec(70, 40, 25),
			paid:         map[[2]domain.TaxHead]int64{},
			cashPayable:  vec(0, 0, 0),
			carryForward: vec(70, 40, 25),
		},
		{
			name:      "excess credit carried forward",
			liability: vec(10, 10, 10),
			credit:    vec(5, 50, 50),
			paid: map[[2]domain.TaxHead]int64{
				{domain.HeadIGST, domain.HeadIGST}: 5,
				{domain.HeadCGST, domain.HeadCGST}: 10,
				{domain.HeadCGST, domain.HeadIGST}: 5,
				{domain.HeadSGST, domain.HeadSGST}: 10,
			},
			cashPayable:  vec(0, 0, 0),
			carryForward: vec(0, 35, 40),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Calculate(tt.liability, tt.credit)
			require.NoError(t, err)

			for _, from := range domain.TaxHeads {
				for _, to := range domain.TaxHeads {
					assertPaid(t, res, from, to, tt.paid[[2]domain.TaxHead{from, to}])
				}
			}
			assertVec(t, tt.cashPayable, res.CashPayable)
			assertVec(t, tt.carryForward, res.CarryForward)
		})
	}
}

func TestCalculate_Conserves(t *testing.T) {
	liability := domain.TaxVector{
		IGST: decimal.RequireFromString("1234.56"),
		CGST: decimal.RequireFromString("400.10"),
		SGST: decimal.RequireFromString("399.90"),
	}
	credit := domain.TaxVector{
		IGST: decimal.RequireFromString("900.00"),
		CGST: decimal.RequireFromString("700.25"),
		SGST: decimal.RequireFromString("100.00"),
	}

	res, err := Calculate(liability, credit)
	require.NoError(t, err)

	for _, h := range domain.TaxHeads {
		paidTo, paidFrom := decimal.Zero, decimal.Zero
		for _, o := range domain.TaxHeads {
			paidTo = paidTo.Add(res.Allocation.Paid(o, h))
			paidFrom = paidFrom.Add(res.Allocation.Paid(h, o))
		}
		assert.True(t, liability.Get(h).Equal(paidTo.Add(res.CashPayable.Get(h))), "liability %s", h)
		assert.True(t, credit.Get(h).Equal(paidFrom.Add(res.CarryForward.Get(h))), "credit %s", h)
	}
	assert.Len(t, res.Entries, 9)
}

func TestCalculate_RejectsNegative(t *testing.T) {
	_, err := Calculate(vec(10, -1, 0), vec(0, 0, 0))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "liability CGST")

	_, err = Calculate(vec(0, 0, 0), vec(0, 0, -5))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "credit SGST")
}

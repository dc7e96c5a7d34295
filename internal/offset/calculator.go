// Package offset computes how input tax credit is set off against output tax
// liability under the statutory utilization order.
package offset

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gstreco/internal/domain"
)

type step struct {
	from, to domain.TaxHead
}

// utilization is the set-off order: integrated credit is exhausted first,
// then central and state credit against their own head before integrated.
// Central and state credit never cross-utilize.
var utilization = []step{
	{domain.HeadIGST, domain.HeadIGST},
	{domain.HeadIGST, domain.HeadCGST},
	{domain.HeadIGST, domain.HeadSGST},
	{domain.HeadCGST, domain.HeadCGST},
	{domain.HeadCGST, domain.HeadIGST},
	{domain.HeadSGST, domain.HeadSGST},
	{domain.HeadSGST, domain.HeadIGST},
}

// Calculate allocates credit against liability. Negative components are
// rejected with domain.ErrInvalidInput.
func Calculate(liability, credit domain.TaxVector) (*domain.OffsetResult, error) {
	if err := validate("liability", liability); err != nil {
		return nil, err
	}
	if err := validate("credit", credit); err != nil {
		return nil, err
	}

	res := &domain.OffsetResult{Liability: liability, Credit: credit}
	due := liability
	left := credit

	for _, s := range utilization {
		amt := decimal.Min(due.Get(s.to), left.Get(s.from))
		if !amt.IsPositive() {
			continue
		}
		res.Allocation[s.from][s.to] = amt
		due.Set(s.to, due.Get(s.to).Sub(amt))
		left.Set(s.from, left.Get(s.from).Sub(amt))
	}

	res.CashPayable = due
	res.CarryForward = left
	res.Entries = res.Allocation.Entries()
	return res, nil
}

func validate(name string, v domain.TaxVector) error {
	for _, h := range domain.TaxHeads {
		if v.Get(h).IsNegative() {
			return fmt.Errorf("%s %s is negative (%s): %w", name, h, v.Get(h).StringFixed(2), domain.ErrInvalidInput)
		}
	}
	return nil
}

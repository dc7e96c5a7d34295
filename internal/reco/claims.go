package reco

import (
	"fmt"

	"gstreco/internal/domain"
)

// claims is the consumption set of a single reconcile run. A candidate may be
// claimed at most once.
type claims struct {
	used []bool
}

func newClaims(n int) *claims {
	return &claims{used: make([]bool, n)}
}

func (c *claims) available(id int) bool {
	return !c.used[id]
}

// filter returns the unclaimed subset of ids, preserving order.
func (c *claims) filter(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !c.used[id] {
			out = append(out, id)
		}
	}
	return out
}

func (c *claims) claim(ids []int) error {
	for _, id := range ids {
		if c.used[id] {
			return fmt.Errorf("candidate %d: %w", id, domain.ErrCandidateReused)
		}
	}
	for _, id := range ids {
		c.used[id] = true
	}
	return nil
}

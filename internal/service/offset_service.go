package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"gstreco/internal/domain"
	"gstreco/internal/offset"
)

// OffsetService exposes the set-off calculator on manually entered figures.
type OffsetService interface {
	Calculate(liability, credit domain.TaxVector) (*domain.OffsetResult, error)
}

type offsetService struct {
	log logrus.FieldLogger
}

// NewOffsetService creates a new OffsetService.
func NewOffsetService(log logrus.FieldLogger) OffsetService {
	return &offsetService{log: log}
}

func (s *offsetService) Calculate(liability, credit domain.TaxVector) (*domain.OffsetResult, error) {
	res, err := offset.Calculate(liability, credit)
	if err != nil {
		return nil, fmt.Errorf("offsetService.Calculate: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"liability":     liability.Total().String(),
		"credit":        credit.Total().String(),
		"cash_payable":  res.CashPayable.Total().String(),
		"carry_forward": res.CarryForward.Total().String(),
	}).Debug("offset computed")
	return res, nil
}

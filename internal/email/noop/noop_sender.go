package noop

import (
	"context"

	"github.com/sirupsen/logrus"

	"gstreco/internal/domain"
	"gstreco/internal/port"
)

type noopNotifier struct {
	log logrus.FieldLogger
}

// NewNoopNotifier creates a ReportNotifier that only logs.
func NewNoopNotifier(log logrus.FieldLogger) port.ReportNotifier {
	return &noopNotifier{log: log}
}

func (n *noopNotifier) NotifyReportReady(_ context.Context, toEmail string, run *domain.RecoRun, downloadURL string) error {
	n.log.WithFields(logrus.Fields{
		"to":       toEmail,
		"run_id":   run.ID,
		"download": downloadURL,
	}).Info("[NOOP EMAIL] report ready")
	return nil
}

package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"gstreco/internal/domain"
	"gstreco/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESNotifier creates an SES-backed ReportNotifier.
func NewSESNotifier(region, fromAddress, fromName, frontendURL string) (port.ReportNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesNotifier{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesNotifier) NotifyReportReady(ctx context.Context, toEmail string, run *domain.RecoRun, downloadURL string) error {
	subject := fmt.Sprintf("GSTR-2B reconciliation ready (%s books)", run.BooksFormat)
	textBody := buildReportText(run, downloadURL, s.frontendURL)
	htmlBody := buildReportHTML(run, downloadURL, s.frontendURL)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func runLink(frontendURL string, run *domain.RecoRun) string {
	return fmt.Sprintf("%s/runs/%s", frontendURL, run.ID)
}

func buildReportText(run *domain.RecoRun, downloadURL, frontendURL string) string {
	return fmt.Sprintf(
		"Your reconciliation of %d portal and %d books records is ready.\n\nDownload the report (link expires soon):\n%s\n\nRun details: %s\n",
		run.PortalRecords, run.BooksRecords, downloadURL, runLink(frontendURL, run),
	)
}

func buildReportHTML(run *domain.RecoRun, downloadURL, frontendURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Reconciliation report ready</h2>
  <p>%d portal records were reconciled against %d books records.</p>
  <p><a href="%s">Download the report</a> (link expires soon).</p>
  <p><a href="%s">View run details</a></p>
</body>
</html>`, run.PortalRecords, run.BooksRecords, html.EscapeString(downloadURL), html.EscapeString(runLink(frontendURL, run)))
}

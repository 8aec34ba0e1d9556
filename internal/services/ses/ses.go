// Package ses provides email notification services via AWS SES.
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "broker-quote-engine/internal/config"
	"broker-quote-engine/internal/models"
	"broker-quote-engine/internal/utils"
)

// Service handles SES email operations.
type Service struct {
	client    *ses.Client
	fromEmail string
}

// EmailParams represents parameters for sending an email.
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// NewService creates a new SES service.
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	appCfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	return &Service{
		client:    ses.NewFromConfig(cfg),
		fromEmail: appCfg.SESSenderEmail,
	}, nil
}

// SendEmail sends a basic email. A missing sender address means email is not
// configured for this deployment; the send is skipped rather than failed.
func (s *Service) SendEmail(ctx context.Context, params EmailParams) error {
	if s.fromEmail == "" {
		utils.GetLogger().Debug("SES sender not configured, skipping email",
			zap.String("to", params.To))
		return nil
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}
	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.Logger.Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	utils.Logger.Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("messageId", *result.MessageId),
	)

	return nil
}

var quoteSummaryTemplate = template.Must(template.New("quote").Parse(`
<html><body>
<h2>Quote {{.Reference}}</h2>
<p>Saved {{.SavedAt}}</p>
<table border="0" cellpadding="4">
<tr><td>Product</td><td>{{.Quote.ProductName}}</td></tr>
<tr><td>Scope</td><td>{{.Quote.Scope}}</td></tr>
<tr><td>Rate</td><td>{{.Quote.RateText}}</td></tr>
<tr><td>Tier</td><td>{{.Quote.Tier}}</td></tr>
{{if .Quote.GrossLoan.Valid}}<tr><td>Gross loan</td><td>£{{printf "%.2f" .Quote.GrossLoan.Value}}</td></tr>{{end}}
{{if .Quote.NetLoan.Valid}}<tr><td>Net loan</td><td>£{{printf "%.2f" .Quote.NetLoan.Value}}</td></tr>{{end}}
{{if .Quote.LTV.Valid}}<tr><td>LTV</td><td>{{printf "%.2f" .Quote.LTV.Value}}%</td></tr>{{end}}
{{if .Quote.ICR.Valid}}<tr><td>ICR</td><td>{{printf "%.2f" .Quote.ICR.Value}}%</td></tr>{{end}}
{{if .Quote.Commission.Valid}}<tr><td>Broker commission</td><td>£{{printf "%.2f" .Quote.Commission.Value}}</td></tr>{{end}}
</table>
</body></html>`))

// SendQuoteSummary emails a saved quote summary to the broker.
func (s *Service) SendQuoteSummary(ctx context.Context, reference string, quote *models.QuoteCreate) error {
	var html bytes.Buffer
	err := quoteSummaryTemplate.Execute(&html, struct {
		Reference string
		SavedAt   string
		Quote     *models.QuoteCreate
	}{
		Reference: reference,
		SavedAt:   time.Now().UTC().Format(time.RFC1123),
		Quote:     quote,
	})
	if err != nil {
		return fmt.Errorf("failed to render quote summary: %w", err)
	}

	subject := fmt.Sprintf("Quote %s saved: %s", reference, quote.ProductName)

	return s.SendEmail(ctx, EmailParams{
		To:       quote.BrokerEmail,
		Subject:  subject,
		HTMLBody: html.String(),
		TextBody: fmt.Sprintf("Quote %s saved for %s.", reference, quote.ProductName),
	})
}

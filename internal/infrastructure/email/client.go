// Package email provides the email client for sending operational alerts.
package email

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BizOSaaS/brain-go/internal/infrastructure/email/templates"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending alert emails, allowing for mock implementations in tests.
type Service interface {
	SendIsolationAlert(toEmail, tenantID, operation, detail string) error
	SendConflictAlert(toEmail, tenantID, platform, metricName, periodDate string, storedValue, computedValue float64) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("ALERT_EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "alerts@bizosaas.com"
	}

	fromName := os.Getenv("ALERT_EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "BizOSaaS Brain"
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendIsolationAlert notifies operators that an unscoped data access was rejected.
func (c *ResendClient) SendIsolationAlert(toEmail, tenantID, operation, detail string) error {
	content := templates.GetIsolationAlertContent(templates.IsolationAlertProps{
		TenantID:  tenantID,
		Operation: operation,
		Detail:    detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: "Tenant isolation violation rejected",
		Content:   content,
	})

	return c.send(toEmail, fmt.Sprintf("Isolation violation: %s", operation), htmlContent)
}

// SendConflictAlert notifies operators that a rollup recomputation disagreed with the stored value.
func (c *ResendClient) SendConflictAlert(toEmail, tenantID, platform, metricName, periodDate string, storedValue, computedValue float64) error {
	content := templates.GetConflictAlertContent(templates.ConflictAlertProps{
		TenantID:      tenantID,
		Platform:      platform,
		MetricName:    metricName,
		PeriodDate:    periodDate,
		StoredValue:   strconv.FormatFloat(storedValue, 'f', -1, 64),
		ComputedValue: strconv.FormatFloat(computedValue, 'f', -1, 64),
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: "Aggregation conflict detected",
		Content:   content,
	})

	return c.send(toEmail, fmt.Sprintf("Aggregation conflict: %s/%s %s", platform, metricName, periodDate), htmlContent)
}

func (c *ResendClient) send(toEmail, subject, htmlContent string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send alert email via Resend: %w", err)
	}
	return nil
}

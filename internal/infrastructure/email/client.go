// Package email provides the email client for sending the at-risk digest.
package email

import (
	"fmt"
	"os"

	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/email/templates"
	"github.com/pulsedeskhq/pulsedesk-go/pkg/config"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendAtRiskDigest(toEmails []string, props templates.DigestEmailProps) error
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

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: config.DigestFromEmail,
		fromName:  config.DigestFromName,
	}, nil
}

// SendAtRiskDigest composes and sends the at-risk account digest.
func (c *ResendClient) SendAtRiskDigest(toEmails []string, props templates.DigestEmailProps) error {
	if len(toEmails) == 0 {
		return fmt.Errorf("digest requires at least one recipient")
	}

	subject := fmt.Sprintf("PulseDesk digest: %d accounts at high churn risk", len(props.HighRiskRows))
	if len(props.HighRiskRows) == 0 {
		subject = "PulseDesk digest: no accounts at high churn risk"
	}

	content := templates.GetDigestEmailContent(props)
	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      toEmails,
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send digest email via Resend: %w", err)
	}

	return nil
}

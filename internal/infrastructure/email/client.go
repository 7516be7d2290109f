// Package email sends exported documents as test emails.
package email

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/resendlabs/resend-go"
)

// maxRecipients caps a single test send
const maxRecipients = 5

// Message is one test send of an exported document
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendTestEmail(msg Message) (string, error)
}

// emailSender is the subset of the Resend client used here
type emailSender interface {
	Send(params *resend.SendEmailRequest) (resend.SendEmailResponse, error)
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	emails    emailSender
	fromEmail string
	fromName  string
	markdown  *converter.Converter
}

// NewService creates a new email service client, returning the Service interface.
func NewService(apiKey, fromEmail, fromName string) (Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is required to send email")
	}
	client := resend.NewClient(apiKey)
	return newResendClient(client.Emails, fromEmail, fromName), nil
}

func newResendClient(sender emailSender, fromEmail, fromName string) *ResendClient {
	return &ResendClient{
		emails:    sender,
		fromEmail: fromEmail,
		fromName:  fromName,
		markdown: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// PlainText renders the markdown alternative of an HTML body
func (c *ResendClient) PlainText(html string) (string, error) {
	text, err := c.markdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert email body to text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// SendTestEmail sends msg with an HTML part and a plain text alternative
func (c *ResendClient) SendTestEmail(msg Message) (string, error) {
	if err := ValidateRecipients(msg.To); err != nil {
		return "", err
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return "", fmt.Errorf("subject is required")
	}
	text, err := c.PlainText(msg.HTML)
	if err != nil {
		return "", err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    text,
	}

	sent, err := c.emails.Send(params)
	if err != nil {
		return "", fmt.Errorf("failed to send test email via Resend: %w", err)
	}
	return sent.Id, nil
}

// ValidateRecipients checks the recipient list of a test send
func ValidateRecipients(to []string) error {
	if len(to) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if len(to) > maxRecipients {
		return fmt.Errorf("at most %d recipients are allowed", maxRecipients)
	}
	for _, addr := range to {
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("invalid recipient %q: %w", addr, err)
		}
	}
	return nil
}

// Package mail sends transactional email to tenants through a pluggable
// provider behind a bounded retrying queue.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/tenancy/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrInvalidMessage is returned for messages without a recipient or subject
var ErrInvalidMessage = errors.New("mail: message requires recipient and subject")

// Message is one outbound email
type Message struct {
	To       string
	ToName   string
	Subject  string
	Text     string
	HTML     string
	Category string
}

// Validate checks the required fields
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" || strings.TrimSpace(m.Subject) == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Sender delivers a single message
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// LogSender writes messages to the log instead of delivering them
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.logger.Info("email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("category", msg.Category),
	)
	return nil
}

// Name returns the provider name
func (s *LogSender) Name() string { return "log" }

const sendGridHost = "https://api.sendgrid.com"

// SendGridSender delivers mail through the SendGrid v3 API
type SendGridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGridSender creates a SendGrid sender. host overrides the API base
// URL and is empty in production.
func NewSendGridSender(apiKey, from, fromName, host string) *SendGridSender {
	if host == "" {
		host = sendGridHost
	}
	req := sendgrid.GetRequest(apiKey, "/v3/mail/send", host)
	req.Method = "POST"
	return &SendGridSender{
		client:   &sendgrid.Client{Request: req},
		from:     from,
		fromName: fromName,
	}
}

// Send posts the message to SendGrid. Non-2xx responses are errors.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	from := sgmail.NewEmail(s.fromName, s.from)
	to := sgmail.NewEmail(msg.ToName, msg.To)
	m := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	if msg.Category != "" {
		m.AddCategories(msg.Category)
	}

	// transactional mail, keep links untouched
	tracking := sgmail.NewTrackingSettings()
	click := sgmail.NewClickTrackingSetting()
	click.SetEnable(false)
	click.SetEnableText(false)
	tracking.SetClickTracking(click)
	m.SetTrackingSettings(tracking)

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid API error: %d", resp.StatusCode)
	}
	return nil
}

// Name returns the provider name
func (s *SendGridSender) Name() string { return "sendgrid" }

// NewSender builds the configured provider
func NewSender(cfg config.MailConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Provider {
	case "", "log":
		return NewLogSender(logger), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, errors.New("mail: sendgrid provider requires an API key")
		}
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.FromAddress, cfg.FromName, ""), nil
	default:
		return nil, fmt.Errorf("mail: unknown provider %q", cfg.Provider)
	}
}

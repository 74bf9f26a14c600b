package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridConfig holds the API key and sender address for the secondary
// HTTP transport.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
}

// SendGridSender delivers verification emails through the SendGrid API.
// It is the secondary transport, tried when SMTP is unavailable or failed.
type SendGridSender struct {
	cfg    SendGridConfig
	client *sendgrid.Client
}

// NewSendGridSender creates a SendGridSender from the given config.
func NewSendGridSender(cfg SendGridConfig) *SendGridSender {
	if cfg.FromEmail == "" {
		cfg.FromEmail = "noreply@quickmart.com"
	}
	s := &SendGridSender{cfg: cfg}
	if s.Configured() {
		s.client = sendgrid.NewSendClient(cfg.APIKey)
	}
	return s
}

// Provider identifies this sender as the secondary transport.
func (s *SendGridSender) Provider() Provider {
	return ProviderSecondary
}

// Configured reports whether an API key was supplied.
func (s *SendGridSender) Configured() bool {
	return s.cfg.APIKey != ""
}

// Send delivers the verification email through the SendGrid API.
func (s *SendGridSender) Send(ctx context.Context, address, code, name string) error {
	if !s.Configured() {
		return fmt.Errorf("sendgrid transport not configured")
	}

	from := mail.NewEmail("QuickMart", s.cfg.FromEmail)
	to := mail.NewEmail(name, address)
	subject := "Your QuickMart Verification Code"
	plain := fmt.Sprintf("Your QuickMart verification code is %s. It expires in 5 minutes.", code)
	message := mail.NewSingleEmail(from, subject, to, plain, otpEmailHTML(name, code))

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected message: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// Verify only confirms an API key is present; SendGrid has no cheap
// connection probe.
func (s *SendGridSender) Verify(ctx context.Context) error {
	if !s.Configured() {
		return fmt.Errorf("sendgrid transport not configured")
	}
	return nil
}

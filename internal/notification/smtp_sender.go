package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds credentials for the primary SMTP transport. Empty
// credentials mean the transport is not configured, which is a supported
// state.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers verification emails over SMTP. It is the primary
// transport in the chain.
type SMTPSender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPSender creates an SMTPSender from the given config.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	s := &SMTPSender{cfg: cfg}
	if s.Configured() {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

// Provider identifies this sender as the primary transport.
func (s *SMTPSender) Provider() Provider {
	return ProviderPrimary
}

// Configured reports whether SMTP credentials were supplied.
func (s *SMTPSender) Configured() bool {
	return s.cfg.Username != "" && s.cfg.Password != ""
}

// Send delivers the verification email. gomail has no context support, so
// the dial-and-send runs in a goroutine and the context bounds the wait.
func (s *SMTPSender) Send(ctx context.Context, address, code, name string) error {
	if !s.Configured() {
		return fmt.Errorf("smtp transport not configured")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from(), "QuickMart")
	m.SetHeader("To", address)
	m.SetHeader("Subject", "Your QuickMart Verification Code")
	m.SetBody("text/html", otpEmailHTML(name, code))

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send timed out: %w", ctx.Err())
	}
}

// Verify dials the SMTP server once to confirm credentials and
// reachability.
func (s *SMTPSender) Verify(ctx context.Context) error {
	if !s.Configured() {
		return fmt.Errorf("smtp transport not configured")
	}

	done := make(chan error, 1)
	go func() {
		closer, err := s.dialer.Dial()
		if err == nil {
			closer.Close()
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp connection failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp connection timed out: %w", ctx.Err())
	}
}

func (s *SMTPSender) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.Username
}

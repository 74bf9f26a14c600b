// Package notification delivers one-time verification codes through a
// chain of email transports. Dispatch never fails: when every transport
// is unconfigured or errors, the outcome carries the code itself so the
// caller can surface it out-of-band.
package notification

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Provider identifies which transport produced an outcome.
type Provider string

const (
	ProviderPrimary   Provider = "primary"
	ProviderSecondary Provider = "secondary"
	ProviderNone      Provider = "none"
)

// Outcome is the result of a dispatch call. Delivered is true only when a
// transport confirmed acceptance. Code is always present so verification
// can proceed even with no transport configured.
type Outcome struct {
	Delivered  bool     `json:"delivered"`
	Code       string   `json:"code"`
	Provider   Provider `json:"provider_used"`
	Diagnostic string   `json:"diagnostic,omitempty"`
}

// Sender is one transport in the chain. Configured senders are tried in
// order; a Send error means fall through to the next sender.
type Sender interface {
	Provider() Provider
	Configured() bool
	Send(ctx context.Context, address, code, name string) error
	// Verify is an advisory startup self-check. A failure never blocks
	// later Send attempts.
	Verify(ctx context.Context) error
}

// attemptTimeout bounds each transport attempt so a hung connection
// cannot stall the caller.
const attemptTimeout = 20 * time.Second

// Dispatcher walks an ordered sender chain. Its configuration is fixed at
// construction.
type Dispatcher struct {
	senders []Sender
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher over the given senders, tried in the
// order supplied.
func NewDispatcher(senders ...Sender) *Dispatcher {
	return &Dispatcher{
		senders: senders,
		timeout: attemptTimeout,
	}
}

// SendVerificationCode tries each configured sender until one accepts the
// message. It always returns an outcome, never an error: an exhausted
// chain degrades to the diagnostic fallback with the code included.
func (d *Dispatcher) SendVerificationCode(ctx context.Context, address, code, name string) Outcome {
	var lastErr error
	for _, sender := range d.senders {
		if !sender.Configured() {
			continue
		}

		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := sender.Send(sendCtx, address, code, name)
		cancel()
		if err != nil {
			log.Printf("Email send via %s failed for %s: %v", sender.Provider(), address, err)
			lastErr = err
			continue
		}

		log.Printf("Verification code sent to %s via %s", address, sender.Provider())
		return Outcome{
			Delivered: true,
			Code:      code,
			Provider:  sender.Provider(),
		}
	}

	outcome := Outcome{
		Delivered:  false,
		Code:       code,
		Provider:   ProviderNone,
		Diagnostic: "no email transport configured",
	}
	if lastErr != nil {
		outcome.Diagnostic = lastErr.Error()
	}
	// The code still has to reach someone; log it for out-of-band delivery.
	log.Printf("Fallback verification code for %s: %s", address, code)
	return outcome
}

// VerifyConnections runs each configured sender's self-check and logs the
// result. Failures are advisory: sends are always retried live.
func (d *Dispatcher) VerifyConnections(ctx context.Context) {
	for _, sender := range d.senders {
		if !sender.Configured() {
			log.Printf("Email transport %s not configured, skipping self-check", sender.Provider())
			continue
		}
		verifyCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := sender.Verify(verifyCtx)
		cancel()
		if err != nil {
			log.Printf("Email transport %s self-check failed: %v", sender.Provider(), err)
		} else {
			log.Printf("Email transport %s is ready", sender.Provider())
		}
	}
}

// otpEmailHTML renders the verification email body.
func otpEmailHTML(name, code string) string {
	if name == "" {
		name = "User"
	}
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width:600px;margin:auto;padding:20px;background:#f9f9f9;">
  <div style="background:#fff;padding:30px;border-radius:10px;">
    <h2 style="color:#2c5aa0;text-align:center;">QuickMart</h2>
    <p>Hi %s,</p>
    <p>Your verification code is:</p>
    <div style="text-align:center;margin:25px 0;">
      <span style="font-size:32px;font-weight:bold;color:#2c5aa0;letter-spacing:5px;">%s</span>
    </div>
    <p>This code expires in <strong>5 minutes</strong>.</p>
    <p style="font-size:12px;color:#999;text-align:center;margin-top:30px;">
      Do not share this code with anyone.
    </p>
  </div>
</div>`, name, code)
}

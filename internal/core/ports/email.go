package ports

import (
	"context"
	"fmt"
)

// EmailClient sends one transactional email per call. Implementations do not
// retry; retry policy belongs to the caller.
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, htmlBody, textBody string) error
}

// DeliveryError describes a failed send, classified by origin so callers and
// logs can tell a provider rejection from a timeout or a network fault.
// Exactly one of the three shapes applies: Timeout set, StatusCode set, or
// neither (network-level failure).
type DeliveryError struct {
	StatusCode int // provider HTTP status, 0 if the response never arrived
	Timeout    bool
	Err        error
}

func (e *DeliveryError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("email delivery timed out: %v", e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("email provider rejected the request with status %d", e.StatusCode)
	default:
		return fmt.Sprintf("email delivery failed: %v", e.Err)
	}
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

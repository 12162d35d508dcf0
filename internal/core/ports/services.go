package ports

import (
	"context"

	"github.com/lettermark/newsletter/internal/core/domain/subscriber"
)

// SubscriptionService runs the signup confirmation pipeline for one request.
// A nil return means a subscriber was persisted with a stored token and the
// confirmation email went out; failures are *subscription.SignupError values.
type SubscriptionService interface {
	Subscribe(ctx context.Context, name, email string) (*subscriber.Subscriber, error)
}

// ConfirmationService redeems a confirmation token issued by the signup
// pipeline.
type ConfirmationService interface {
	Confirm(ctx context.Context, token string) error
}

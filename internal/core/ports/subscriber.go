package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lettermark/newsletter/internal/core/domain/subscriber"
)

// ErrUniqueViolation reports that an insert hit a unique constraint: a second
// signup for an email already on file, or a forced token collision. Callers
// match it with errors.Is.
var ErrUniqueViolation = errors.New("unique constraint violation")

// ErrTokenNotFound reports that a confirmation token has no matching row.
var ErrTokenNotFound = errors.New("subscription token not found")

// SubscriptionStore owns the persistent state of subscribers and their
// confirmation tokens.
type SubscriptionStore interface {
	// Begin opens the transaction that the signup pipeline runs in. A failure
	// here is infrastructure trouble (pool exhaustion, lost connection), not a
	// data conflict, and is reported as such.
	Begin(ctx context.Context) (SubscriptionTx, error)

	// GetSubscriberIDFromToken resolves a confirmation token to the
	// subscriber it authorizes, or ErrTokenNotFound.
	GetSubscriberIDFromToken(ctx context.Context, token string) (uuid.UUID, error)

	// ConfirmSubscriber marks the subscriber's email as confirmed.
	ConfirmSubscriber(ctx context.Context, id uuid.UUID) error
}

// SubscriptionTx is one signup transaction: insert the subscriber, store the
// token, then commit. Rollback after Commit is a no-op, so callers may defer
// it unconditionally.
type SubscriptionTx interface {
	InsertSubscriber(ctx context.Context, sub *subscriber.Subscriber) error
	StoreToken(ctx context.Context, subscriberID uuid.UUID, token string) error
	Commit() error
	Rollback() error
}

package subscriber

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks a subscriber through the confirmation lifecycle. A subscriber
// starts pending and moves to confirmed exactly once, when the confirmation
// token is redeemed; there is no transition back.
type Status string

const (
	StatusPendingConfirmation Status = "pending_confirmation"
	StatusConfirmed           Status = "confirmed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingConfirmation, StatusConfirmed:
		return true
	default:
		return false
	}
}

type Subscriber struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        Email     `json:"email" db:"email"`
	Name         Name      `json:"name" db:"name"`
	Status       Status    `json:"status" db:"status"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
}

// SubscriptionToken is the credential mailed to a subscriber. It is a
// disposable capability, not an owned entity: redeeming it flips the
// referenced subscriber to confirmed.
type SubscriptionToken struct {
	Token        string    `json:"subscription_token" db:"subscription_token"`
	SubscriberID uuid.UUID `json:"subscriber_id" db:"subscriber_id"`
}

// NewSubscriber is a validated signup request, ready to be persisted.
type NewSubscriber struct {
	Email Email
	Name  Name
}

// ParseNewSubscriber validates the raw form fields of a signup request.
func ParseNewSubscriber(name, email string) (NewSubscriber, error) {
	parsedName, err := ParseName(name)
	if err != nil {
		return NewSubscriber{}, err
	}
	parsedEmail, err := ParseEmail(email)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Email: parsedEmail, Name: parsedName}, nil
}

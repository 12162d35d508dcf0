package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lettermark/newsletter/internal/core/ports"
)

// ConfirmationService redeems tokens minted by the signup pipeline. Every
// committed token maps to exactly one subscriber, so a successful lookup is
// proof of control over the subscribed address.
type ConfirmationService struct {
	store  ports.SubscriptionStore
	logger *logrus.Logger
}

func NewConfirmationService(store ports.SubscriptionStore, logger *logrus.Logger) ports.ConfirmationService {
	return &ConfirmationService{store: store, logger: logger}
}

// Confirm resolves token and marks the matching subscriber as confirmed.
// Returns ports.ErrTokenNotFound for an unknown token.
func (s *ConfirmationService) Confirm(ctx context.Context, token string) error {
	subscriberID, err := s.store.GetSubscriberIDFromToken(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrTokenNotFound) {
			return err
		}
		return fmt.Errorf("failed to resolve subscription token: %w", err)
	}

	if err := s.store.ConfirmSubscriber(ctx, subscriberID); err != nil {
		return fmt.Errorf("failed to confirm subscription: %w", err)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"subscriber_id": subscriberID}).Info("subscription: confirmed")
	}

	return nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lettermark/newsletter/internal/core/domain/subscriber"
	"github.com/lettermark/newsletter/internal/core/domain/subscription"
	"github.com/lettermark/newsletter/internal/core/ports"
	"github.com/lettermark/newsletter/internal/utils"
)

// signupState names the stations of the confirmation pipeline. The pipeline
// only ever moves forward; every transition can instead drop into a terminal
// failure. Keeping the states explicit makes the one consequential boundary
// reviewable: the transaction commits before the email goes out, so a
// delivery failure leaves a pending subscriber that no email reached.
type signupState string

const (
	stateReceived    signupState = "received"
	stateValidated   signupState = "validated"
	statePersisted   signupState = "persisted"
	stateTokenStored signupState = "token_stored"
	stateCommitted   signupState = "committed"
	stateEmailSent   signupState = "email_sent"
)

const confirmationSubject = "Welcome!"

// SubscriptionServiceConfig carries the values the pipeline needs beyond its
// collaborators: who the email is from and where confirmation links point.
type SubscriptionServiceConfig struct {
	SenderEmail string
	// AppBaseURL is the public origin of this service, used to build the
	// confirmation link.
	AppBaseURL string
}

// SubscriptionService drives a signup request through validation, the
// subscriber/token transaction, and confirmation-email dispatch.
type SubscriptionService struct {
	store  ports.SubscriptionStore
	mailer ports.EmailClient
	config *SubscriptionServiceConfig
	logger *logrus.Logger
}

func NewSubscriptionService(store ports.SubscriptionStore, mailer ports.EmailClient, config *SubscriptionServiceConfig, logger *logrus.Logger) ports.SubscriptionService {
	return &SubscriptionService{
		store:  store,
		mailer: mailer,
		config: config,
		logger: logger,
	}
}

// Subscribe runs the pipeline for one signup. On success the subscriber is
// durably pending and the confirmation email has been accepted by the
// provider. Failures are *subscription.SignupError values; storage failures
// before commit roll the transaction back, a delivery failure after commit
// deliberately does not undo the subscription.
func (s *SubscriptionService) Subscribe(ctx context.Context, name, email string) (*subscriber.Subscriber, error) {
	state := stateReceived

	newSub, err := subscriber.ParseNewSubscriber(name, email)
	if err != nil {
		// The caller's fault; surfaced, not logged as an incident.
		return nil, s.fail(subscription.FailureValidation, state, "validate input", err)
	}
	state = s.advance(state, stateValidated)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, s.fail(subscription.FailureStorage, state, "begin transaction", err)
	}
	// Rollback after commit is a no-op, so this covers every early return.
	defer func() { _ = tx.Rollback() }()

	sub := &subscriber.Subscriber{
		ID:           uuid.New(),
		Email:        newSub.Email,
		Name:         newSub.Name,
		Status:       subscriber.StatusPendingConfirmation,
		SubscribedAt: time.Now().UTC(),
	}
	if err := tx.InsertSubscriber(ctx, sub); err != nil {
		return nil, s.fail(subscription.FailureStorage, state, "insert subscriber", err)
	}
	state = s.advance(state, statePersisted)

	token, err := utils.GenerateSubscriptionToken()
	if err != nil {
		return nil, s.fail(subscription.FailureStorage, state, "generate token", err)
	}
	if err := tx.StoreToken(ctx, sub.ID, token); err != nil {
		return nil, s.fail(subscription.FailureStorage, state, "store token", err)
	}
	state = s.advance(state, stateTokenStored)

	if err := tx.Commit(); err != nil {
		return nil, s.fail(subscription.FailureStorage, state, "commit transaction", err)
	}
	state = s.advance(state, stateCommitted)

	if err := s.sendConfirmationEmail(ctx, sub.Email, token); err != nil {
		// Past the commit boundary: the pending subscriber survives.
		return nil, s.fail(subscription.FailureDelivery, state, "send confirmation email", err)
	}
	state = s.advance(state, stateEmailSent)

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"subscriber_id": sub.ID, "email": sub.Email}).Info("subscription: new subscriber pending confirmation")
	}

	return sub, nil
}

// sendConfirmationEmail builds both bodies around one identical link and
// hands them to the dispatch client.
func (s *SubscriptionService) sendConfirmationEmail(ctx context.Context, to subscriber.Email, token string) error {
	link := fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s", s.config.AppBaseURL, token)
	textBody := fmt.Sprintf(
		"Welcome to our newsletter!\nVisit %s to confirm your subscription.",
		link,
	)
	htmlBody := fmt.Sprintf(
		"Welcome to our newsletter!<br/>Click <a href=%q>here</a> to confirm your subscription.",
		link,
	)
	return s.mailer.Send(ctx, s.config.SenderEmail, to.String(), confirmationSubject, htmlBody, textBody)
}

func (s *SubscriptionService) advance(from, to signupState) signupState {
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"from": from, "to": to}).Debug("subscription: pipeline advanced")
	}
	return to
}

func (s *SubscriptionService) fail(kind subscription.FailureKind, state signupState, stage string, cause error) error {
	signupErr := subscription.NewSignupError(kind, stage, cause)
	if s.logger != nil {
		entry := s.logger.WithFields(logrus.Fields{"state": state, "stage": stage})
		if kind == subscription.FailureValidation {
			entry.Debug("subscription: rejected invalid input")
		} else {
			entry.Error(signupErr.Chain())
		}
	}
	return signupErr
}

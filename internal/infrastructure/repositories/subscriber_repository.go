package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/lettermark/newsletter/internal/core/domain/subscriber"
	"github.com/lettermark/newsletter/internal/core/ports"
	"github.com/lettermark/newsletter/internal/infrastructure/db"
)

// uniqueViolation is the Postgres error code for a violated unique constraint.
const uniqueViolation = "23505"

// SubscriberRepository implements the subscription store over Postgres.
type SubscriberRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewSubscriberRepository creates a new subscriber repository
func NewSubscriberRepository(database *db.Database, logger *logrus.Logger) ports.SubscriptionStore {
	return &SubscriberRepository{
		db:     database,
		logger: logger,
	}
}

// Begin opens the transaction the signup pipeline runs in.
func (r *SubscriberRepository) Begin(ctx context.Context) (ports.SubscriptionTx, error) {
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to begin subscription transaction")
		}
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &subscriptionTx{tx: tx, logger: r.logger}, nil
}

// GetSubscriberIDFromToken resolves a confirmation token to its subscriber.
func (r *SubscriberRepository) GetSubscriberIDFromToken(ctx context.Context, token string) (uuid.UUID, error) {
	var id uuid.UUID
	query := `SELECT subscriber_id FROM subscription_tokens WHERE subscription_token = $1`

	err := r.db.DB.GetContext(ctx, &id, query, token)
	if err != nil {
		if err == sql.ErrNoRows {
			if r.logger != nil {
				r.logger.Debug("db: subscription token not found")
			}
			return uuid.Nil, ports.ErrTokenNotFound
		}
		if r.logger != nil {
			r.logger.WithError(err).Error("db: failed to look up subscription token")
		}
		return uuid.Nil, fmt.Errorf("failed to look up subscription token: %w", err)
	}

	return id, nil
}

// ConfirmSubscriber flips the subscriber's status to confirmed.
func (r *SubscriberRepository) ConfirmSubscriber(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE subscriptions SET status = $2 WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id, subscriber.StatusConfirmed)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"subscriber_id": id}).WithError(err).Error("db: failed to confirm subscriber")
		}
		return fmt.Errorf("failed to confirm subscriber: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("subscriber with ID %s not found", id)
	}

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"subscriber_id": id}).Info("db: subscriber confirmed")
	}

	return nil
}

// subscriptionTx wraps one sqlx transaction. The pipeline commits only after
// both inserts succeed; any earlier failure rolls the whole thing back.
type subscriptionTx struct {
	tx     *sqlx.Tx
	logger *logrus.Logger
}

// InsertSubscriber inserts a new pending subscriber row.
func (t *subscriptionTx) InsertSubscriber(ctx context.Context, sub *subscriber.Subscriber) error {
	query := `
		INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := t.tx.ExecContext(ctx, query,
		sub.ID, sub.Email, sub.Name, sub.SubscribedAt, sub.Status)
	if err != nil {
		if isUniqueViolation(err) {
			if t.logger != nil {
				t.logger.WithFields(logrus.Fields{"email": sub.Email}).Debug("db: subscriber email already exists")
			}
			return fmt.Errorf("email %q already subscribed: %w", sub.Email, ports.ErrUniqueViolation)
		}
		if t.logger != nil {
			t.logger.WithFields(logrus.Fields{"subscriber_id": sub.ID, "email": sub.Email}).WithError(err).Error("db: failed to insert subscriber")
		}
		return fmt.Errorf("failed to insert subscriber: %w", err)
	}

	return nil
}

// StoreToken inserts the confirmation token row for subscriberID.
func (t *subscriptionTx) StoreToken(ctx context.Context, subscriberID uuid.UUID, token string) error {
	query := `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)`

	_, err := t.tx.ExecContext(ctx, query, token, subscriberID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("subscription token already in use: %w", ports.ErrUniqueViolation)
		}
		if t.logger != nil {
			t.logger.WithFields(logrus.Fields{"subscriber_id": subscriberID}).WithError(err).Error("db: failed to store subscription token")
		}
		return fmt.Errorf("failed to store subscription token: %w", err)
	}

	return nil
}

func (t *subscriptionTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit subscription transaction: %w", err)
	}
	return nil
}

func (t *subscriptionTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back subscription transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

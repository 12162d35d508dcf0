package subscription_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lettermark/newsletter/internal/core/domain/subscription"
)

func TestSignupError_KindAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := subscription.NewSignupError(subscription.FailureStorage, "insert subscriber", cause)

	kind, ok := subscription.KindOf(err)
	require.True(t, ok)
	require.Equal(t, subscription.FailureStorage, kind)
	require.ErrorIs(t, err, cause)
}

func TestSignupError_KindSurvivesWrapping(t *testing.T) {
	err := subscription.NewSignupError(subscription.FailureDelivery, "send confirmation email", errors.New("timeout"))
	wrapped := fmt.Errorf("handling signup: %w", err)

	kind, ok := subscription.KindOf(wrapped)
	require.True(t, ok)
	require.Equal(t, subscription.FailureDelivery, kind)
}

func TestKindOf_NotASignupError(t *testing.T) {
	_, ok := subscription.KindOf(errors.New("plain"))
	require.False(t, ok)
}

func TestSignupError_ChainWalksAllCauses(t *testing.T) {
	root := errors.New("disk full")
	mid := fmt.Errorf("failed to insert subscriber: %w", root)
	err := subscription.NewSignupError(subscription.FailureStorage, "insert subscriber", mid)

	chain := err.Chain()
	require.Contains(t, chain, `storage failure at "insert subscriber"`)
	require.Contains(t, chain, "failed to insert subscriber")
	require.Contains(t, chain, "disk full")
}

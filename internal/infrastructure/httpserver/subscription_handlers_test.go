package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/lettermark/newsletter/internal/core/domain/subscriber"
	"github.com/lettermark/newsletter/internal/core/domain/subscription"
	"github.com/lettermark/newsletter/internal/core/ports"
	"github.com/lettermark/newsletter/internal/infrastructure/httpserver"
)

type subscriptionServiceMock struct {
	subscribeFn func(ctx context.Context, name, email string) (*subscriber.Subscriber, error)
}

func (m *subscriptionServiceMock) Subscribe(ctx context.Context, name, email string) (*subscriber.Subscriber, error) {
	return m.subscribeFn(ctx, name, email)
}

type confirmationServiceMock struct {
	confirmFn func(ctx context.Context, token string) error
}

func (m *confirmationServiceMock) Confirm(ctx context.Context, token string) error {
	return m.confirmFn(ctx, token)
}

type rateLimiterServiceMock struct{}

func (m *rateLimiterServiceMock) Allow(ctx context.Context, key string) (bool, int, int, time.Time, error) {
	return true, 100, 60, time.Now().Add(time.Minute), nil
}

func newTestServer(t *testing.T, subs ports.SubscriptionService, conf ports.ConfirmationService) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	srv := httpserver.NewServer(&httpserver.ServerConfig{Host: "127.0.0.1", Port: "0"}, logger, httpserver.ServerDeps{
		SubscriptionService: subs,
		ConfirmationService: conf,
		RateLimiterService:  &rateLimiterServiceMock{},
	})

	ts := httptest.NewServer(srv.Echo())
	t.Cleanup(ts.Close)
	return ts
}

func postForm(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/subscriptions", "application/x-www-form-urlencoded", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSubscribe_ReturnsOKForValidFormData(t *testing.T) {
	var gotName, gotEmail string
	subs := &subscriptionServiceMock{subscribeFn: func(ctx context.Context, name, email string) (*subscriber.Subscriber, error) {
		gotName, gotEmail = name, email
		sub, err := subscriber.ParseNewSubscriber(name, email)
		require.NoError(t, err)
		return &subscriber.Subscriber{Email: sub.Email, Name: sub.Name, Status: subscriber.StatusPendingConfirmation}, nil
	}}
	ts := newTestServer(t, subs, &confirmationServiceMock{})

	resp := postForm(t, ts, "name=le%20guin&email=ursula_le_guin%40gmail.com")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "le guin", gotName)
	require.Equal(t, "ursula_le_guin@gmail.com", gotEmail)
}

func TestSubscribe_Returns400ForInvalidFormData(t *testing.T) {
	cases := []struct {
		body   string
		reason string
	}{
		{"email=ursula_le_guin%40gmail.com", "missing the name"},
		{"name=le%20guin", "missing the email"},
		{"", "missing both name and email"},
		{"name=le%20guin&email=definitely-not-an-email", "invalid email"},
		{"name=" + url.QueryEscape(`{"le guin"}`) + "&email=ursula_le_guin%40gmail.com", "forbidden characters in name"},
	}
	subs := &subscriptionServiceMock{subscribeFn: func(ctx context.Context, name, email string) (*subscriber.Subscriber, error) {
		if _, err := subscriber.ParseNewSubscriber(name, email); err != nil {
			return nil, subscription.NewSignupError(subscription.FailureValidation, "validate input", err)
		}
		t.Fatal("input expected to fail validation")
		return nil, nil
	}}
	ts := newTestServer(t, subs, &confirmationServiceMock{})

	for _, tc := range cases {
		resp := postForm(t, ts, tc.body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 when payload is %s", tc.reason)
	}
}

func TestSubscribe_Returns500OnStorageFailure(t *testing.T) {
	subs := &subscriptionServiceMock{subscribeFn: func(ctx context.Context, name, email string) (*subscriber.Subscriber, error) {
		return nil, subscription.NewSignupError(subscription.FailureStorage, "insert subscriber", errors.New("connection reset"))
	}}
	ts := newTestServer(t, subs, &confirmationServiceMock{})

	resp := postForm(t, ts, "name=le%20guin&email=ursula_le_guin%40gmail.com")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSubscribe_Returns500OnDeliveryFailure(t *testing.T) {
	subs := &subscriptionServiceMock{subscribeFn: func(ctx context.Context, name, email string) (*subscriber.Subscriber, error) {
		return nil, subscription.NewSignupError(subscription.FailureDelivery, "send confirmation email", &ports.DeliveryError{StatusCode: 500})
	}}
	ts := newTestServer(t, subs, &confirmationServiceMock{})

	resp := postForm(t, ts, "name=le%20guin&email=ursula_le_guin%40gmail.com")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestConfirm_Returns400WithoutToken(t *testing.T) {
	conf := &confirmationServiceMock{confirmFn: func(ctx context.Context, token string) error {
		t.Fatal("confirmation must not run without a token")
		return nil
	}}
	ts := newTestServer(t, &subscriptionServiceMock{}, conf)

	resp, err := http.Get(ts.URL + "/subscriptions/confirm")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConfirm_Returns401ForUnknownToken(t *testing.T) {
	conf := &confirmationServiceMock{confirmFn: func(ctx context.Context, token string) error {
		return ports.ErrTokenNotFound
	}}
	ts := newTestServer(t, &subscriptionServiceMock{}, conf)

	resp, err := http.Get(ts.URL + "/subscriptions/confirm?subscription_token=mF9dNqLx3kTzR7wYbV2cJ8pQs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestConfirm_Returns500OnStoreFailure(t *testing.T) {
	conf := &confirmationServiceMock{confirmFn: func(ctx context.Context, token string) error {
		return errors.New("connection reset")
	}}
	ts := newTestServer(t, &subscriptionServiceMock{}, conf)

	resp, err := http.Get(ts.URL + "/subscriptions/confirm?subscription_token=mF9dNqLx3kTzR7wYbV2cJ8pQs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestConfirm_Returns200OnSuccess(t *testing.T) {
	var gotToken string
	conf := &confirmationServiceMock{confirmFn: func(ctx context.Context, token string) error {
		gotToken = token
		return nil
	}}
	ts := newTestServer(t, &subscriptionServiceMock{}, conf)

	resp, err := http.Get(ts.URL + "/subscriptions/confirm?subscription_token=mF9dNqLx3kTzR7wYbV2cJ8pQs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "mF9dNqLx3kTzR7wYbV2cJ8pQs", gotToken)
}

func TestHealthCheck_ReturnsOKWithoutCheckers(t *testing.T) {
	ts := newTestServer(t, &subscriptionServiceMock{}, &confirmationServiceMock{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

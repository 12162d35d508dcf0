package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lettermark/newsletter/internal/core/ports"
	"github.com/lettermark/newsletter/internal/utils"
)

const serverTokenHeader = "X-Postmark-Server-Token"

// PostmarkConfig holds the provider settings for the dispatch client.
type PostmarkConfig struct {
	// BaseURL is the provider origin; the client posts to {BaseURL}/email.
	BaseURL     string
	ServerToken utils.SecretString
	SendTimeout time.Duration
}

// PostmarkClient sends transactional email over Postmark's HTTP API. One
// request per Send, no retries; the caller decides what a failure means.
type PostmarkClient struct {
	config     *PostmarkConfig
	logger     *logrus.Logger
	httpClient *http.Client
}

// NewPostmarkClient creates a new email dispatch client.
func NewPostmarkClient(config *PostmarkConfig, logger *logrus.Logger) ports.EmailClient {
	return &PostmarkClient{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.SendTimeout,
		},
	}
}

// sendEmailRequest is the provider wire format. Field names are part of the
// Postmark contract and must marshal exactly as written.
type sendEmailRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// Send posts one email to the provider. Failures come back as
// *ports.DeliveryError: a timeout, a non-2xx provider status, or a
// network-level fault. The server token is placed in the request header and
// nowhere else.
func (c *PostmarkClient) Send(ctx context.Context, from, to, subject, htmlBody, textBody string) error {
	body, err := json.Marshal(sendEmailRequest{
		From:     from,
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return &ports.DeliveryError{Err: fmt.Errorf("failed to encode email request: %w", err)}
	}

	url := fmt.Sprintf("%s/email", c.config.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &ports.DeliveryError{Err: fmt.Errorf("failed to build email request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(serverTokenHeader, c.config.ServerToken.Reveal())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			if c.logger != nil {
				c.logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Warn("email: provider request timed out")
			}
			return &ports.DeliveryError{Timeout: true, Err: err}
		}
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"to": to, "subject": subject}).WithError(err).Error("email: provider request failed")
		}
		return &ports.DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{"to": to, "subject": subject, "status_code": resp.StatusCode}).Error("email: provider rejected the request")
		}
		return &ports.DeliveryError{StatusCode: resp.StatusCode}
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"to": to, "subject": subject, "status_code": resp.StatusCode}).Info("email: sent")
	}

	return nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

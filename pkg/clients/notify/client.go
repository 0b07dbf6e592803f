// Package notify posts operator messages to a chat webhook.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client delivers text messages to operators.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds the webhook endpoint and its optional bearer token.
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Message is the JSON body posted to the webhook.
type Message struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewClient builds a webhook client for cfg.
func NewClient(cfg Config) *WebhookClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &WebhookClient{httpClient: restyClient, url: cfg.URL}
}

// HTTPClient exposes the underlying transport, mainly for tests.
func (c *WebhookClient) HTTPClient() *http.Client {
	return c.httpClient.GetClient()
}

// Send posts msg to the webhook.
func (c *WebhookClient) Send(ctx context.Context, msg Message) error {
	if c.url == "" {
		return errors.New("notify webhook url is not configured")
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("notify webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}
	return nil
}

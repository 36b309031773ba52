package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"

	"hedge_bot/internal/modules/config"
)

// Client is the REST side of the exchange gateway. Every public method is a
// single round trip wrapped in the retry decorator from retry.go.
type Client struct {
	cfg *config.Config

	http      *http.Client
	baseURL   string
	apiKey    string
	apiSecret string

	maxAttempts int
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:         cfg,
		http:        &http.Client{Timeout: 10 * time.Second},
		baseURL:     cfg.Exchange.BaseURL,
		apiKey:      cfg.Exchange.APIKey,
		apiSecret:   cfg.Exchange.APISecret,
		maxAttempts: cfg.APIMaxRetries,
	}
}

func (c *Client) sign(ts, method, requestPath, body string) string {
	msg := ts + strings.ToUpper(method) + requestPath + body
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(msg))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (c *Client) generateRequest(ctx context.Context, method, requestPath, body string) *http.Request {
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, _ := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, rd)
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("X-API-SIGN", c.sign(ts, method, requestPath, body))
	req.Header.Set("X-API-TIMESTAMP", ts)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

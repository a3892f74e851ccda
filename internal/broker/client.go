// Package broker speaks the broker's REST contract: authenticated JSON
// requests with a success/failure split the retry layer can act on. Transport
// details beyond method/path/payload stay inside this package.
package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marlin/internal/config"
	"marlin/internal/retry"

	"github.com/tidwall/gjson"
)

const (
	headerAPIKey    = "APCA-API-KEY-ID"
	headerAPISecret = "APCA-API-SECRET-KEY"
)

// Client is the shared, long-lived broker transport. Safe for concurrent use;
// connection reuse lives inside the embedded http.Client.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	apiKey     string
	apiSecret  string
}

// NewClient constructs a broker client from configuration.
func NewClient(cfg config.BrokerConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("broker base URL cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing broker base URL failed: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     strings.TrimSpace(cfg.APIKey),
		apiSecret:  strings.TrimSpace(cfg.APISecret),
	}, nil
}

// Request performs one broker call and classifies the outcome. Network
// failures and transient statuses come back as plain (retryable) errors;
// permanent rejections are marked so the retry layer stops immediately.
func (c *Client) Request(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c == nil || c.httpClient == nil {
		return nil, retry.Permanent(fmt.Errorf("broker client not initialized"))
	}
	endpoint, err := c.resolveEndpoint(path)
	if err != nil {
		return nil, retry.Permanent(err)
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, retry.Permanent(fmt.Errorf("encoding request failed: %w", err))
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("building request failed: %w", err))
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerAPISecret, c.apiSecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("broker call failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading broker response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		if statusErr.Transient() {
			return nil, statusErr
		}
		return nil, retry.Permanent(statusErr)
	}
	return data, nil
}

// SubmitOrder posts a bracket order carrying clientOrderID for broker-side
// deduplication and returns the assigned order id.
func (c *Client) SubmitOrder(ctx context.Context, order Order, clientOrderID string) (string, error) {
	order.ClientOrderID = clientOrderID
	data, err := c.Request(ctx, http.MethodPost, "/v2/orders", order)
	if err != nil {
		return "", err
	}
	id := gjson.GetBytes(data, "id").String()
	if id == "" {
		return "", fmt.Errorf("broker response missing order id")
	}
	return id, nil
}

// Account is the subset of the broker account snapshot the core consumes.
type Account struct {
	Equity      float64
	Cash        float64
	BuyingPower float64
}

// GetAccount fetches the live account snapshot. The broker serializes money
// fields as strings; gjson coerces them.
func (c *Client) GetAccount(ctx context.Context) (Account, error) {
	data, err := c.Request(ctx, http.MethodGet, "/v2/account", nil)
	if err != nil {
		return Account{}, err
	}
	return Account{
		Equity:      gjson.GetBytes(data, "equity").Float(),
		Cash:        gjson.GetBytes(data, "cash").Float(),
		BuyingPower: gjson.GetBytes(data, "buying_power").Float(),
	}, nil
}

// CloseAllPositions asks the broker to liquidate every open position. Used by
// the circuit-breaker halt path.
func (c *Client) CloseAllPositions(ctx context.Context) error {
	_, err := c.Request(ctx, http.MethodDelete, "/v2/positions", nil)
	return err
}

func (c *Client) resolveEndpoint(path string) (*url.URL, error) {
	if c.baseURL == nil {
		return nil, fmt.Errorf("broker base URL not set")
	}
	trimmed := strings.TrimSpace(path)
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	base := *c.baseURL
	base.Path = strings.TrimSuffix(base.Path, "/") + trimmed
	return &base, nil
}

// Package provider implements the HTTP transport for the metered data
// provider's account endpoint. It is the concrete balance source behind the
// oracle; everything above it talks to the oracle, not to this package.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxErrorBody caps how much of an error response is carried into an error
// message.
const maxErrorBody = 4096

// Client reads the remaining credit balance from the provider's account
// endpoint. It implements oracle.BalanceClient.
type Client struct {
	balanceURL string
	apiKey     string
	client     *http.Client
	logger     *slog.Logger
}

// Config configures the provider client.
type Config struct {
	// BalanceURL is the full URL of the provider's balance endpoint.
	BalanceURL string

	// APIKey authenticates requests to the provider.
	APIKey string

	// Timeout is the per-request timeout.
	// Default: 10 seconds
	Timeout time.Duration
}

// balanceResponse is the provider's account payload.
type balanceResponse struct {
	Balance int64 `json:"balance"`
}

// NewClient creates a provider balance client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BalanceURL == "" {
		return nil, fmt.Errorf("balance URL cannot be empty")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		balanceURL: cfg.BalanceURL,
		apiKey:     cfg.APIKey,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger: slog.Default().With("component", "provider.client"),
	}, nil
}

// RemainingBalance performs one balance read against the provider.
//
// There is no caching and no retry here: the oracle's contract is a fresh
// observation per call, and admission fails closed on any failure, so a
// transient error is surfaced immediately rather than papered over.
func (c *Client) RemainingBalance(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.balanceURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create balance request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("balance request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, fmt.Errorf("balance endpoint returned status %d: %s", resp.StatusCode, body)
	}

	var payload balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode balance response: %w", err)
	}
	if payload.Balance < 0 {
		return 0, fmt.Errorf("provider reported negative balance %d", payload.Balance)
	}

	c.logger.Debug("balance observed from provider", "balance", payload.Balance)
	return payload.Balance, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

package escrow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// Client drives the downstream escrow execution service over its REST API.
// The downstream contract makes Add and Delete idempotent, so retries after
// partial failures are safe.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(logger *slog.Logger, baseURL, apiKey string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
		logger:  logger.With("module", "escrow", "layer", "adapter"),
	}
}

type escrowBody struct {
	Account  string `json:"account"`
	Sequence uint32 `json:"sequence"`
	Testnet  bool   `json:"testnet"`
}

func (c *Client) Exists(ctx context.Context, key ports.EscrowKey) (bool, error) {
	path := fmt.Sprintf("/escrows/%s/%d?testnet=%t", key.Account, key.Sequence, key.Testnet)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("escrow lookup: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("escrow lookup: unexpected status %d", resp.StatusCode)
	}
}

func (c *Client) Add(ctx context.Context, key ports.EscrowKey) error {
	raw, err := json.Marshal(escrowBody{Account: key.Account, Sequence: key.Sequence, Testnet: key.Testnet})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/escrows", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("escrow add: %w", err)
	}
	defer resp.Body.Close()

	// 409 means the record already exists, which satisfies Add.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("escrow add: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key ports.EscrowKey) error {
	path := fmt.Sprintf("/escrows/%s/%d?testnet=%t", key.Account, key.Sequence, key.Testnet)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("escrow delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("escrow delete: unexpected status %d", resp.StatusCode)
	}
	return nil
}

package oracle

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the external randomness oracle. In mock mode no network
// calls are made and request ids are generated locally; fulfillment must then
// be delivered by hand (see cmd/scripts/simulate_oracle.go).
type Client struct {
	BaseURL      string
	APIKey       string
	SeedConfigID string
	Mock         bool
	client       *http.Client
}

// RandomnessRequest is the outbound request to the oracle
type RandomnessRequest struct {
	SeedConfigID   string `json:"seedConfigId"`
	Confirmations  int    `json:"requestedConfirmations"`
	CallbackBudget int64  `json:"callbackBudget"`
	Count          int    `json:"count"`
}

// RandomnessResponse carries the oracle-assigned request id
type RandomnessResponse struct {
	RequestID string `json:"requestId"`
}

// NewClient creates a new oracle client
func NewClient(baseURL, apiKey, seedConfigID string, mock bool) *Client {
	return &Client{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		SeedConfigID: seedConfigID,
		Mock:         mock,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// RequestRandomness submits a randomness request and returns the assigned
// request id. The seed itself arrives later through the fulfillment callback.
func (c *Client) RequestRandomness(ctx context.Context, confirmations int, callbackBudget int64) (*RandomnessResponse, error) {
	if c.Mock {
		return c.mockRequestRandomness()
	}

	reqBody := RandomnessRequest{
		SeedConfigID:   c.SeedConfigID,
		Confirmations:  confirmations,
		CallbackBudget: callbackBudget,
		Count:          1,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/randomness/requests", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("oracle request rejected with status %d", resp.StatusCode)
	}

	var out RandomnessResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode oracle response: %w", err)
	}
	if out.RequestID == "" {
		return nil, fmt.Errorf("oracle response missing request id")
	}
	return &out, nil
}

// mockRequestRandomness generates a local request id for testing
func (c *Client) mockRequestRandomness() (*RandomnessResponse, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return &RandomnessResponse{RequestID: "mock-" + hex.EncodeToString(buf)}, nil
}

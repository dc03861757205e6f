package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Gateway executes outbound value transfers. The prize ledger treats any
// error as a failed transfer and rolls its own state back.
type Gateway interface {
	Transfer(ctx context.Context, account string, amount int64) (string, error)
}

// HTTPGateway sends transfers to an external payment processor
type HTTPGateway struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewHTTPGateway creates a new HTTPGateway
func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type transferRequest struct {
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

type transferResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Transfer pushes amount to account and returns the processor reference
func (g *HTTPGateway) Transfer(ctx context.Context, account string, amount int64) (string, error) {
	payload, err := json.Marshal(transferRequest{Account: account, Amount: amount})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/v1/transfers", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", g.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transfer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transfer rejected with status %d", resp.StatusCode)
	}

	var out transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode transfer response: %w", err)
	}
	if out.Status != "SUCCESS" {
		return "", fmt.Errorf("transfer not successful: %s", out.Status)
	}
	return out.Reference, nil
}

// MockGateway records transfers in memory. Accounts listed in Fail reject
// transfers, which tests use to exercise rollback paths.
type MockGateway struct {
	mu        sync.Mutex
	seq       int
	Fail      map[string]bool
	Transfers map[string]int64 // total pushed per account
}

// NewMockGateway creates a new MockGateway
func NewMockGateway() *MockGateway {
	return &MockGateway{
		Fail:      make(map[string]bool),
		Transfers: make(map[string]int64),
	}
}

// Transfer records the transfer and returns a synthetic reference
func (g *MockGateway) Transfer(ctx context.Context, account string, amount int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Fail[account] {
		return "", fmt.Errorf("mock transfer to %s refused", account)
	}
	g.seq++
	g.Transfers[account] += amount
	return fmt.Sprintf("MOCK%06d", g.seq), nil
}

// Total returns the total amount pushed to an account
func (g *MockGateway) Total(account string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Transfers[account]
}

package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"snippethub-backend/internal/config"
)

// Client talks to the subscription billing provider's REST API.
// Only session creation and customer provisioning happen here; subscription
// state flows back through signed webhooks.
type Client struct {
	cfg        config.BillingConfig
	httpClient *http.Client
}

func NewClient(cfg config.BillingConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// EnsureCustomer creates a provider-side customer and returns its id.
func (c *Client) EnsureCustomer(ctx context.Context, email, name string) (string, error) {
	var cust Customer
	err := c.post(ctx, "/v1/customers", customerRequest{Email: email, Name: name}, &cust)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

// CreateCheckoutSession returns a hosted checkout URL for the given tier.
func (c *Client) CreateCheckoutSession(ctx context.Context, customerID, tier string) (*Session, error) {
	var session Session
	err := c.post(ctx, "/v1/checkout/sessions", checkoutRequest{
		CustomerID: customerID,
		Tier:       tier,
		ReturnURL:  c.cfg.ReturnURL,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CreatePortalSession returns a hosted billing-portal URL.
func (c *Client) CreatePortalSession(ctx context.Context, customerID string) (*Session, error) {
	var session Session
	err := c.post(ctx, "/v1/portal/sessions", portalRequest{
		CustomerID: customerID,
		ReturnURL:  c.cfg.ReturnURL,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// HealthCheck verifies the provider API is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"/v1/ping", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("billing provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("billing provider returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal billing request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build billing request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("billing request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read billing response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("billing provider returned %d: %s", resp.StatusCode, data)
	}

	if dest != nil {
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("decode billing response: %w", err)
		}
	}
	return nil
}

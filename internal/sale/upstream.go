package sale

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-pos/internal/resilience"
)

// Upstream accepts finalised documents and returns the id the ledger assigned.
type Upstream interface {
	SubmitSale(ctx context.Context, payload SalePayload) (int64, error)
	SubmitQuote(ctx context.Context, payload QuotePayload) (int64, error)
}

// Client talks to the legacy sales ledger over HTTP. Requests go through the
// resilience wrapper so transient upstream failures are retried and a
// persistently failing ledger trips the breaker instead of piling up requests.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    resilience.HTTPClient
}

type upstreamResponse struct {
	Body json.Number `json:"body"`
}

// SubmitSale posts to venta/agregarVenta.
func (c *Client) SubmitSale(ctx context.Context, payload SalePayload) (int64, error) {
	return c.post(ctx, "venta/agregarVenta", payload)
}

// SubmitQuote posts to presupuestos/agregarPresupuesto.
func (c *Client) SubmitQuote(ctx context.Context, payload QuotePayload) (int64, error) {
	return c.post(ctx, "presupuestos/agregarPresupuesto", payload)
}

func (c *Client) post(ctx context.Context, path string, payload any) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode %s payload: %w", path, err)
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("post %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("post %s: upstream returned %s: %s", path, resp.Status, string(snippet))
	}

	var decoded upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("decode %s response: %w", path, err)
	}
	id, err := decoded.Body.Int64()
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("post %s: upstream returned no document id", path)
	}
	return id, nil
}

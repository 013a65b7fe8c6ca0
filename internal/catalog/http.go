package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

// HTTPProvider reads products from the catalog API. Concurrent lookups for
// the same product are collapsed into a single request via singleflight.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	sfg     singleflight.Group
}

func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type productEnvelope struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
}

func (p *HTTPProvider) GetProduct(ctx context.Context, id string) (*Product, error) {
	v, err, _ := p.sfg.Do(id, func() (interface{}, error) {
		return p.fetch(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Product), nil
}

func (p *HTTPProvider) fetch(ctx context.Context, id string) (*Product, error) {
	endpoint := fmt.Sprintf("%s/api/products/%s", p.baseURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, ErrProductNotFound
	}

	return envelope.Data, nil
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPGateway submits orders to the order service over JSON/HTTP. Calls run
// through a circuit breaker so a struggling order service fails fast instead
// of piling up requests. Each submission carries a fresh idempotency key.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Confirmation]
	log     zerolog.Logger
}

func NewHTTPGateway(baseURL string, timeout time.Duration, log zerolog.Logger) *HTTPGateway {
	breaker := gobreaker.NewCircuitBreaker[*Confirmation](gobreaker.Settings{
		Name:    "order-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &HTTPGateway{
		baseURL: baseURL,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		log:     log,
	}
}

func (g *HTTPGateway) SubmitOrder(ctx context.Context, orderReq *OrderRequest) (*Confirmation, error) {
	return g.breaker.Execute(func() (*Confirmation, error) {
		return g.submit(ctx, orderReq)
	})
}

func (g *HTTPGateway) submit(ctx context.Context, orderReq *OrderRequest) (*Confirmation, error) {
	body, err := json.Marshal(orderReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		orderErr := &OrderError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(orderErr); err != nil || orderErr.Code == "" {
			orderErr.Code = "internal_error"
			orderErr.Message = fmt.Sprintf("order service returned status %d", resp.StatusCode)
		}
		g.log.Warn().
			Int("status", resp.StatusCode).
			Str("code", orderErr.Code).
			Msg("order submission rejected")
		return nil, orderErr
	}

	var confirmation Confirmation
	if err := json.NewDecoder(resp.Body).Decode(&confirmation); err != nil {
		return nil, fmt.Errorf("failed to decode order confirmation: %w", err)
	}

	return &confirmation, nil
}

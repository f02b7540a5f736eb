package syncer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPPusher pushes payloads to the workout sync endpoint.
type HTTPPusher struct {
	endpoint   string
	authToken  string
	httpClient *http.Client
}

func NewHTTPPusher(endpoint, authToken string) *HTTPPusher {
	return &HTTPPusher{
		endpoint:  endpoint,
		authToken: authToken,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (p *HTTPPusher) Push(ctx context.Context, idempotencyKey string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-FITQUEST-TOKEN", p.authToken)
	req.Header.Set("X-Idempotency-Key", idempotencyKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sync push failed with status %d", resp.StatusCode)
	}

	return nil
}

package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"novel-backend/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retryingClient struct {
	base  Client
	name  string
	delay time.Duration
}

// WithRetry wraps base so a transient failure is retried once after a short delay.
func WithRetry(name string, base Client) Client {
	if base == nil {
		return nil
	}
	return retryingClient{base: base, name: name, delay: retryBaseDelay}
}

func (r retryingClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := r.base.Complete(ctx, req)
	if err == nil || !ShouldRetry(err) || ctx.Err() != nil {
		return resp, err
	}

	telemetry.Warn("llm.retry", map[string]any{
		"provider":  r.name,
		"operation": string(req.Operation),
		"attempt":   1,
		"error":     err.Error(),
	})
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
	return r.base.Complete(ctx, req)
}

// ShouldRetry reports whether err looks transient: timeouts, rate limits, 5xx
// responses and dropped connections.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "status 429") || strings.Contains(msg, "resource_exhausted") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "llm") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}
	return false
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxResponseBytes = 10 << 20

// NewHTTPClient returns a client whose transport propagates trace context.
// Deadlines come from each call's context, not from the client.
func NewHTTPClient() *http.Client {
	return &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
}

// caller performs one HTTP exchange with the API and classifies the
// outcome. It knows nothing about sessions.
type caller struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *zap.Logger
}

func (c *caller) do(ctx context.Context, method, endpoint string, headers map[string]string, body any) (json.RawMessage, error) {
	if method == "" {
		method = http.MethodGet
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil && method != http.MethodGet && method != http.MethodHead {
		raw, ok := body.([]byte)
		if !ok {
			var err error
			if raw, err = json.Marshal(body); err != nil {
				return nil, newError(KindValidation, "Request body could not be encoded", err)
			}
		}
		rd = bytes.NewReader(raw)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, newError(KindUnknown, "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.transportError(ctx, method, url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errorFromResponse(resp.StatusCode, raw)
		c.log.Debug("API request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("error", apiErr.Message))
		return nil, apiErr
	}
	if len(raw) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(raw) {
		return nil, &APIError{Kind: KindUnknown, Status: resp.StatusCode, Message: "Unknown server error"}
	}

	c.log.Debug("API request succeeded",
		zap.String("method", method),
		zap.String("url", url),
		zap.Duration("duration", time.Since(start)))
	return raw, nil
}

func (c *caller) transportError(ctx context.Context, method, url string, err error) *APIError {
	kind := KindNetwork
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = KindTimeout
	}
	c.log.Debug("API request did not complete",
		zap.String("method", method),
		zap.String("url", url),
		zap.Stringer("kind", kind),
		zap.Error(err))
	return newError(kind, "", err)
}

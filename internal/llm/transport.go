package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// maxErrorBody bounds how much of an upstream error body is kept.
const maxErrorBody = 64 << 10

// UpstreamError is a non-2xx answer from the completion endpoint.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("OpenRouter returned %d: %s", e.StatusCode, e.Body)
}

// TransportFunc wraps a RoundTripper.
type TransportFunc func(http.RoundTripper) http.RoundTripper

// roundTripperFunc adapts a function to http.RoundTripper.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func applyTransport(client *http.Client, transports ...TransportFunc) *http.Client {
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	for _, transportFunc := range transports {
		transport = transportFunc(transport)
	}
	clone := *client
	clone.Transport = transport
	return &clone
}

// withProvider adds "provider": {"name": name} to JSON request bodies. An empty
// name leaves requests untouched.
func withProvider(name string) TransportFunc {
	return func(rt http.RoundTripper) http.RoundTripper {
		if name == "" {
			return rt
		}
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Body == nil || req.Method != http.MethodPost {
				return rt.RoundTrip(req)
			}
			raw, err := io.ReadAll(req.Body)
			_ = req.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read request body: %w", err)
			}
			var payload map[string]json.RawMessage
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("decode request body: %w", err)
			}
			provider, err := json.Marshal(map[string]string{"name": name})
			if err != nil {
				return nil, err
			}
			payload["provider"] = provider
			body, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("encode request body: %w", err)
			}

			reqCopy := req.Clone(req.Context())
			reqCopy.Body = io.NopCloser(bytes.NewReader(body))
			reqCopy.ContentLength = int64(len(body))
			reqCopy.Header.Set("Content-Length", strconv.Itoa(len(body)))
			reqCopy.GetBody = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(body)), nil
			}
			return rt.RoundTrip(reqCopy)
		})
	}
}

// withStatusCheck turns any non-2xx response into an *UpstreamError carrying the raw body.
func withStatusCheck() TransportFunc {
	return func(rt http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := rt.RoundTrip(req)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
		})
	}
}

// withRequestLogging logs each outbound request with the logger stored in the request context.
func withRequestLogging() TransportFunc {
	return func(rt http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ctx := req.Context()
			ctxzap.Debug(ctx, "HTTP outbound request",
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
			)
			resp, err := rt.RoundTrip(req)
			if err != nil {
				ctxzap.Debug(ctx, "HTTP outbound request failed", zap.Error(err))
				return nil, err
			}
			ctxzap.Debug(ctx, "HTTP outbound response", zap.Int("status", resp.StatusCode))
			return resp, nil
		})
	}
}

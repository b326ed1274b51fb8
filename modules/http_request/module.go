// Package http_request lets graph nodes call HTTP endpoints.
package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client performs the requests; http.DefaultClient when nil.
	Client *http.Client
}

// Request performs method on url and returns the status code and body.
// Non-2xx responses are returned, not treated as errors.
func (m *Module) Request(ctx context.Context, method, url string) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx)
	method = strings.ToUpper(method)
	logger.Info("Making HTTP request", "method", method, "url", url)

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(bodyBytes),
	}, nil
}

// Get is Request with the GET method.
func (m *Module) Get(ctx context.Context, url string) (map[string]any, error) {
	return m.Request(ctx, http.MethodGet, url)
}

// Register registers the functions with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunc("http_request", m.Request)
	r.RegisterFunc("http_get", m.Get)
}

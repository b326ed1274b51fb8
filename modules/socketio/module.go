// Package socketio publishes node lifecycle events to a Socket.IO server,
// so a dashboard can follow a run live.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/observer"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	// EventNodeStarted is emitted before a node's function runs.
	EventNodeStarted = "node_started"
	// EventNodeFinished is emitted after a node's function returns.
	EventNodeFinished = "node_finished"

	defaultTimeout = 15 * time.Second
)

// Config describes the server to publish to.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// Timeout bounds the initial connection, 15s when zero.
	Timeout time.Duration
}

// Publisher is an observer.Observer that emits every event to a Socket.IO
// namespace.
type Publisher struct {
	mu     sync.Mutex
	emit   func(event string, payload map[string]any)
	close  func()
	closed bool
}

var _ observer.Observer = (*Publisher)(nil)

// Dial connects to the server and waits for the connection to be
// acknowledged.
func Dial(ctx context.Context, cfg Config) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("publisher", "socketio", "url", cfg.URL)
	logger.Info("Connecting event publisher...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid events URL %q: scheme and host are required", cfg.URL)
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := newConnectResult()

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan.report(nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan.report(err)
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	return newPublisher(
		func(event string, payload map[string]any) {
			io.Emit(event, payload)
		},
		func() {
			logger.Info("Disconnecting event publisher", "sid", io.Id())
			io.Disconnect()
		},
	), nil
}

// connectResult holds the first connection outcome. Later reports are
// dropped so they never block the client's event loop.
type connectResult chan error

func newConnectResult() connectResult {
	return make(connectResult, 1)
}

func (c connectResult) report(err error) {
	select {
	case c <- err:
	default:
	}
}

func newPublisher(emit func(string, map[string]any), closeFn func()) *Publisher {
	return &Publisher{emit: emit, close: closeFn}
}

// NodeStarted implements observer.Observer.
func (p *Publisher) NodeStarted(_ context.Context, ev observer.Event) {
	p.publish(EventNodeStarted, payload(ev, "running"))
}

// NodeFinished implements observer.Observer.
func (p *Publisher) NodeFinished(_ context.Context, ev observer.Event) {
	status := "completed"
	if ev.Err != nil {
		status = "failed"
	}
	p.publish(EventNodeFinished, payload(ev, status))
}

// Close disconnects from the server. Events after Close are dropped.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.close()
	return nil
}

func (p *Publisher) publish(event string, data map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.emit(event, data)
}

func payload(ev observer.Event, status string) map[string]any {
	data := map[string]any{
		"run_id":     ev.RunID,
		"node_id":    ev.NodeID,
		"name":       ev.DisplayName,
		"worker":     ev.Worker,
		"status":     status,
		"elapsed_ms": ev.Elapsed.Milliseconds(),
	}
	if ev.Err != nil {
		data["error"] = ev.Err.Error()
	}
	return data
}

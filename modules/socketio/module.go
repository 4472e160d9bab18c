// Package socketio provides a driver that harvests identifiers from a
// socket.io event stream. It connects, optionally emits a subscription event
// (once per trigger identifier for dependent modules), and collects the
// identifiers carried by every matching event until the listening window
// closes, the limit is reached, or the task is cancelled.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/petal/internal/ctxlog"
	"github.com/vk/petal/internal/labels"
	"github.com/vk/petal/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultWindow = 10 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of the socketio driver.
type Input struct {
	URL       string `petal:"url"`
	Namespace string `petal:"namespace,optional"`
	OnEvent   string `petal:"on_event"`
	EmitEvent string `petal:"emit_event,optional"`
	// Field selects the identifier from object payloads.
	Field string `petal:"field,optional"`
	// Window is how long to listen. Reaching it ends the run successfully.
	Window             string `petal:"window,optional"`
	Limit              int    `petal:"limit,optional"`
	InsecureSkipVerify bool   `petal:"insecure_skip_verify,optional"`
}

// OnRunSocketIO is the handler for the socketio driver.
func OnRunSocketIO(ctx context.Context, input *Input, batch *registry.Batch) error {
	logger := ctxlog.FromContext(ctx).With("url", input.URL, "on_event", input.OnEvent, "emit_event", input.EmitEvent)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	window := defaultWindow
	if input.Window != "" {
		d, err := time.ParseDuration(input.Window)
		if err != nil {
			return fmt.Errorf("invalid window: %w", err)
		}
		window = d
	}

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	namespace := input.Namespace
	if namespace == "" {
		namespace = "/"
	}

	opCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	var (
		isConnected atomic.Bool
		received    atomic.Int64
		limitOnce   sync.Once
		limitHit    = make(chan struct{})
		connectErr  = make(chan error, 1)
	)

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "namespace", namespace, "sid", io.Id())
		if input.EmitEvent == "" {
			return
		}
		if batch.IDs == nil {
			io.Emit(input.EmitEvent)
			return
		}
		for _, id := range batch.IDs {
			io.Emit(input.EmitEvent, string(id))
		}
		logger.Info("Emitted subscription events.", "event", input.EmitEvent, "count", len(batch.IDs))
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("connect error: %v", errs[0])
			}
		}
		select {
		case connectErr <- err:
		default:
		}
	})

	io.On(types.EventName(input.OnEvent), func(data ...any) {
		for _, payload := range data {
			for _, id := range ExtractIDs(payload, input.Field) {
				batch.Out.Emit(id)
				if n := received.Add(1); input.Limit > 0 && n >= int64(input.Limit) {
					limitOnce.Do(func() { close(limitHit) })
				}
			}
		}
	})

	io.Connect()

	select {
	case err := <-connectErr:
		return fmt.Errorf("failed to connect: %w", err)
	case <-limitHit:
		logger.Info("Identifier limit reached.", "received", received.Load())
		return nil
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnected.Load() {
			return fmt.Errorf("timed out after %s while waiting for initial connection", window)
		}
		logger.Info("Listening window closed.", "received", received.Load())
		return nil
	}
}

// ExtractIDs pulls identifiers out of one event payload. Strings and numbers
// are identifiers themselves; lists are flattened; objects contribute the
// value under field.
func ExtractIDs(payload any, field string) []labels.ID {
	switch v := payload.(type) {
	case nil:
		return nil
	case string:
		return []labels.ID{labels.ID(v)}
	case float64, int, int64, uint64, bool:
		return []labels.ID{labels.ID(fmt.Sprint(v))}
	case []any:
		var out []labels.ID
		for _, item := range v {
			out = append(out, ExtractIDs(item, field)...)
		}
		return out
	case map[string]any:
		if field == "" {
			return nil
		}
		return ExtractIDs(v[field], field)
	default:
		return nil
	}
}

// Register registers the driver with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDriver("socketio", &registry.RegisteredDriver{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunSocketIO,
	})
}

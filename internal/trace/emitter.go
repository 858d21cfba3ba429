package trace

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/memory"
)

// DefaultEvent is the event name used when Options.Event is empty.
const DefaultEvent = "snapshot"

// ErrDisconnected is returned by Emit once the server connection is gone.
var ErrDisconnected = errors.New("trace: socket disconnected")

// Options configure the Socket.IO connection.
type Options struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Emitter streams records to a Socket.IO server.
type Emitter struct {
	io        *socket.Socket
	event     string
	connected atomic.Bool
	sent      atomic.Uint64
}

// Dial connects to the server and waits until the namespace is joined.
func Dial(ctx context.Context, opts Options) (*Emitter, error) {
	logger := ctxlog.FromContext(ctx).With("trace_url", opts.URL)
	logger.Debug("Connecting trace stream...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("trace URL %q needs a scheme and a host", opts.URL)
	}
	if opts.Event == "" {
		opts.Event = DefaultEvent
	}
	if opts.Namespace == "" {
		opts.Namespace = "/"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	sopts := socket.DefaultOptions()
	sopts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(opts.Namespace, sopts)

	e := &Emitter{io: io, event: opts.Event}
	connectChan := make(chan error, 1)

	io.Once(types.EventName("connect"), func(...any) {
		e.connected.Store(true)
		logger.Info("Trace stream connected.", "sid", io.Id(), "namespace", opts.Namespace)
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if cause, ok := errs[0].(error); ok {
				err = cause
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		e.connected.Store(false)
		logger.Debug("Trace stream disconnected.", "reason", reason)
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return e, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(opts.Timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", opts.Timeout)
	}
}

// Emit sends one record.
func (e *Emitter) Emit(r Record) error {
	if !e.connected.Load() {
		return ErrDisconnected
	}
	e.io.Emit(e.event, r.payload())
	e.sent.Add(1)
	return nil
}

// Report implements memory.Reporter.
func (e *Emitter) Report(_ context.Context, s memory.Snapshot) error {
	return e.Emit(FromSnapshot(s))
}

// Sent returns the number of records emitted.
func (e *Emitter) Sent() uint64 {
	return e.sent.Load()
}

// Close disconnects from the server.
func (e *Emitter) Close() error {
	e.connected.Store(false)
	e.io.Disconnect()
	return nil
}

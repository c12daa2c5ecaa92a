// Package transport implements the client side of the monitoring
// socket protocol: one request document is sent when the socket
// opens, then the server streams response messages until the fetch
// ends, fails, or the client aborts.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"openwatch/internal/metrics"
)

const (
	// DefaultWriteTimeout is the deadline applied to each outbound
	// websocket write (request document, abort, close frames).
	DefaultWriteTimeout = 10 * time.Second
)

var (
	// ErrFetchFailure indicates the server rejected or aborted the
	// fetch and reported a failure message.
	ErrFetchFailure = errors.New("fetch failure")
	// ErrClosed indicates the protocol has been closed locally.
	ErrClosed = errors.New("transport closed")
)

// Dialer opens an authenticated websocket to a monitoring endpoint
// identified by its location path. Implemented by session.Session.
type Dialer interface {
	DialSocket(ctx context.Context, location string) (*websocket.Conn, error)
}

// Option customizes a Protocol.
type Option func(*Protocol)

// WithLogger sets the logger used for stream-level events. Each
// stream tags its lines with a generated stream id and the location.
func WithLogger(log *slog.Logger) Option {
	return func(p *Protocol) {
		if log != nil {
			p.log = log
		}
	}
}

// WithMetrics attaches stream instrumentation. A nil StreamMetrics is
// valid and disables instrumentation.
func WithMetrics(m *metrics.StreamMetrics) Option {
	return func(p *Protocol) {
		p.metrics = m
	}
}

// Protocol manages one monitoring socket exchange. It is not safe for
// concurrent use except that Close may be called from another
// goroutine to unblock a pending Next.
type Protocol struct {
	conn    *websocket.Conn
	log     *slog.Logger
	metrics *metrics.StreamMetrics

	writeMu sync.Mutex

	fetchMu sync.Mutex
	fetchID *int

	closeOnce sync.Once
	closed    chan struct{}
}

// Connect dials the location through d and sends the request
// document. The returned Protocol streams response messages via Next
// and must be closed by the caller.
func Connect(ctx context.Context, d Dialer, location string, request any, opts ...Option) (*Protocol, error) {
	p := &Protocol{
		log:    slog.Default(),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("stream_id", uuid.NewString(), "location", location)

	conn, err := d.DialSocket(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to open monitoring socket %s: %w", location, err)
	}
	p.conn = conn

	if err := p.Send(request); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send query request: %w", err)
	}

	if p.metrics != nil {
		p.metrics.StreamsOpened.Inc()
		p.metrics.StreamsActive.Inc()
	}
	p.log.Debug("monitoring stream opened")
	return p, nil
}

// Send writes one JSON message to the socket. Used for the initial
// request document, additional subscriptions on the notification
// socket, and abort messages.
func (p *Protocol) Send(v any) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if p.isClosed() {
		return ErrClosed
	}
	p.conn.SetWriteDeadline(time.Now().Add(DefaultWriteTimeout))
	return p.conn.WriteJSON(v)
}

// Next blocks until the server delivers the next response message.
// Context cancellation or deadline expiry interrupts the read and
// returns the context error. A server-reported failure is returned as
// an error wrapping ErrFetchFailure.
func (p *Protocol) Next(ctx context.Context) (*Message, error) {
	if p.isClosed() {
		return nil, ErrClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		p.conn.SetReadDeadline(deadline)
	} else {
		p.conn.SetReadDeadline(time.Time{})
	}

	// Unblock the read when the caller gives up or the protocol is
	// closed from another goroutine.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.conn.SetReadDeadline(time.Now())
		case <-p.closed:
			p.conn.SetReadDeadline(time.Now())
		case <-done:
		}
	}()

	var msg Message
	if err := p.conn.ReadJSON(&msg); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if p.isClosed() {
			return nil, ErrClosed
		}
		if p.metrics != nil {
			p.metrics.TransportErrors.Inc()
		}
		return nil, fmt.Errorf("failed to read response message: %w", err)
	}

	if msg.FetchID != nil {
		p.fetchMu.Lock()
		p.fetchID = msg.FetchID
		p.fetchMu.Unlock()
	}

	if p.metrics != nil {
		p.metrics.MessagesTotal.Inc()
	}

	if msg.Failure != "" {
		if p.metrics != nil {
			p.metrics.FetchFailures.Inc()
		}
		p.log.Warn("server reported fetch failure", "failure", msg.Failure)
		return nil, fmt.Errorf("%w: %s", ErrFetchFailure, msg.Failure)
	}

	return &msg, nil
}

// ObserveBatch records delivery of one non-empty batch with the
// stream's instrumentation, if any.
func (p *Protocol) ObserveBatch(size int) {
	if p.metrics != nil {
		p.metrics.ObserveBatch(size)
	}
}

// Abort asks the server to stop the in-flight fetch. It is a no-op
// until the server has assigned a fetch id.
func (p *Protocol) Abort() error {
	p.fetchMu.Lock()
	id := p.fetchID
	p.fetchMu.Unlock()
	if id == nil {
		return nil
	}
	p.log.Debug("aborting fetch", "fetch_id", *id)
	return p.Send(map[string]int{"abort": *id})
}

// Close aborts any in-flight fetch and tears down the websocket.
// Closing is mandatory for live fetches, which otherwise hold the
// server connection open indefinitely. Close is idempotent.
func (p *Protocol) Close() error {
	var err error
	p.closeOnce.Do(func() {
		// Best effort: the server drops the fetch when the socket
		// goes away even if the abort is never delivered.
		p.fetchMu.Lock()
		id := p.fetchID
		p.fetchMu.Unlock()
		if id != nil {
			p.writeMu.Lock()
			p.conn.SetWriteDeadline(time.Now().Add(DefaultWriteTimeout))
			p.conn.WriteJSON(map[string]int{"abort": *id})
			p.writeMu.Unlock()
		}

		p.writeMu.Lock()
		p.conn.SetWriteDeadline(time.Now().Add(DefaultWriteTimeout))
		p.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		p.writeMu.Unlock()

		close(p.closed)
		err = p.conn.Close()

		if p.metrics != nil {
			p.metrics.StreamsActive.Dec()
		}
		p.log.Debug("monitoring stream closed")
	})
	return err
}

func (p *Protocol) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

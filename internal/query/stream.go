package query

import (
	"context"
	"errors"
	"io"

	"openwatch/internal/transport"
	"openwatch/internal/types"
)

// ErrFieldsUnresolved is returned when the server cannot map the
// requested field ids to field metadata.
var ErrFieldsUnresolved = errors.New("unable to resolve field ids")

// Stream is the raw message sequence produced by Execute. Most
// callers want FetchRaw/FetchBatch/FetchLive instead; Stream exposes
// every response message including fetch status and completion
// metadata.
type Stream struct {
	proto *transport.Protocol
	done  bool
}

// Next blocks until the next response message arrives. After the
// message carrying the end-of-results marker has been delivered,
// Next returns io.EOF.
func (s *Stream) Next(ctx context.Context) (*transport.Message, error) {
	if s.done {
		return nil, io.EOF
	}
	msg, err := s.proto.Next(ctx)
	if err != nil {
		return nil, err
	}
	if msg.EndOfStream() {
		s.done = true
	}
	return msg, nil
}

// Close aborts any in-flight fetch and releases the socket. Safe to
// call more than once and mandatory for live fetches.
func (s *Stream) Close() error {
	return s.proto.Close()
}

// BatchStream yields the non-empty record batches of a fetch,
// skipping messages that carry only status metadata. The stream
// terminates with io.EOF when a stored fetch drains; a current
// (live) stream only terminates through Close or a transport error.
type BatchStream struct {
	stream *Stream
	// quantity zero on a stored fetch: deliver whatever the first
	// response message carries, then abort.
	abortAfterFirst bool
	done            bool
}

// Next blocks until the next non-empty batch arrives. Returns io.EOF
// once the fetch has drained; draining closes the underlying socket.
func (bs *BatchStream) Next(ctx context.Context) (types.Batch, error) {
	if bs.done {
		return nil, io.EOF
	}
	for {
		msg, err := bs.stream.Next(ctx)
		if err != nil {
			bs.done = true
			if errors.Is(err, io.EOF) {
				bs.stream.Close()
			}
			return nil, err
		}

		batch, err := msg.Added()
		if err != nil {
			bs.done = true
			bs.stream.Close()
			return nil, err
		}

		if bs.abortAfterFirst {
			bs.done = true
			bs.stream.Close()
			if len(batch) > 0 {
				bs.stream.proto.ObserveBatch(len(batch))
				return batch, nil
			}
			return nil, io.EOF
		}

		if len(batch) > 0 {
			bs.stream.proto.ObserveBatch(len(batch))
			return batch, nil
		}
		if msg.EndOfStream() {
			bs.done = true
			bs.stream.Close()
			return nil, io.EOF
		}
	}
}

// Close aborts the fetch and releases the socket.
func (bs *BatchStream) Close() error {
	return bs.stream.Close()
}

// Formatter renders one batch of records. Table and CSV formatters
// return rendered text; the raw formatter passes the batch through
// unchanged.
type Formatter interface {
	Format(batch types.Batch) any
}

// FormatterFactory builds a Formatter bound to the query it will
// render for. FetchBatch and FetchLive call the factory with their
// internal clone; construction must fail fast on configuration
// errors such as a combined format or unresolvable fields.
type FormatterFactory func(ctx context.Context, q *Query) (Formatter, error)

// FormattedStream runs a batch stream through a formatter.
type FormattedStream struct {
	batches   *BatchStream
	formatter Formatter
}

// Next blocks until the next batch arrives and returns its formatted
// form. Returns io.EOF when the fetch drains.
func (fs *FormattedStream) Next(ctx context.Context) (any, error) {
	batch, err := fs.batches.Next(ctx)
	if err != nil {
		return nil, err
	}
	return fs.formatter.Format(batch), nil
}

// Close aborts the fetch and releases the socket.
func (fs *FormattedStream) Close() error {
	return fs.batches.Close()
}

// ResolveFieldIDs retrieves field metadata for the given ids. It
// issues a detailed-format, zero-quantity query against the log
// viewer socket and returns the field map from the first payload
// carrying one. An empty resolution is ErrFieldsUnresolved: the
// server does not know one or more of the requested ids.
func ResolveFieldIDs(ctx context.Context, d transport.Dialer, ids []LogField, opts ...transport.Option) ([]types.FieldInfo, error) {
	format := NewDetailedFormat()
	format.SetFieldIDs(ids...)

	q := New(LogViewerLocation, nil)
	q.SetFormat(format)
	q.SetFetchSize(0)

	s, err := q.Execute(ctx, d, opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for {
		msg, err := s.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if len(msg.Fields) > 0 {
			return msg.Fields, nil
		}
	}
	return nil, ErrFieldsUnresolved
}

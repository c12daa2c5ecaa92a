// Package query builds and executes monitoring queries. A Query owns
// a time range, a field selection format, an optional filter tree and
// fetch parameters, serializes them into one request document, and
// streams result batches over a monitoring socket.
package query

import (
	"context"

	"openwatch/internal/transport"
)

const (
	// FetchStored retrieves stored records; the stream drains and
	// stops when the server signals the end of results.
	FetchStored = "stored"
	// FetchCurrent streams records in real time; the stream never
	// ends until the caller closes it.
	FetchCurrent = "current"

	// DefaultFetchSize bounds a stored FetchBatch when the caller
	// set no quantity.
	DefaultFetchSize = 200

	// LogViewerLocation is the log viewer socket endpoint, also used
	// internally for field resolution.
	LogViewerLocation = "/monitoring/log/socket"
	// SessionMonitorLocation is the session monitoring endpoint used
	// by the engine-state monitors (connections, routes, users, ...).
	SessionMonitorLocation = "/monitoring/session/socket"
)

// Query is the top level structure for controlling requests over the
// monitoring socket protocol. The zero value is not usable; construct
// with New. All mutators operate on the query in the Configured
// state; never mutate a query concurrently with an in-flight Execute
// (Clone exists precisely so derived fetches work on an isolated
// copy).
type Query struct {
	location  string
	defaults  []LogField
	format    Format
	timeRange TimeRange
	filter    Filter
	fetchType string
	quantity  *int
	backwards *bool
	// extra query keys for session monitors (definition, target)
	extra map[string]string
}

// New creates a query bound to a socket location with the given
// default field ids. The query starts as a stored fetch with a text
// format and no time bounds.
func New(location string, defaults []LogField) *Query {
	return &Query{
		location:  location,
		defaults:  defaults,
		format:    NewTextFormat(),
		fetchType: FetchStored,
		extra:     map[string]string{},
	}
}

// Location returns the socket endpoint path this query executes
// against.
func (q *Query) Location() string { return q.location }

// DefaultFieldIDs returns the query's default field id list, used
// when the format selects no explicit fields.
func (q *Query) DefaultFieldIDs() []LogField { return q.defaults }

// Format returns the current field selection format for in-place
// configuration.
func (q *Query) Format() Format { return q.format }

// SetFormat replaces the field selection format.
func (q *Query) SetFormat(f Format) { q.format = f }

// TimeRange returns the query's time range for in-place mutation.
func (q *Query) TimeRange() *TimeRange { return &q.timeRange }

// SetTimeRange replaces the time range.
func (q *Query) SetTimeRange(tr TimeRange) { q.timeRange = tr }

// FetchType returns the configured fetch mode, stored or current.
func (q *Query) FetchType() string { return q.fetchType }

// SetFetchType selects stored or current (live) fetching.
func (q *Query) SetFetchType(fetchType string) { q.fetchType = fetchType }

// FetchSize returns the configured fetch quantity. The second return
// is false when no quantity is set, meaning the fetch is unbounded.
// A quantity of zero aborts the fetch after the first response
// message.
func (q *Query) FetchSize() (int, bool) {
	if q.quantity == nil {
		return 0, false
	}
	return *q.quantity, true
}

// SetFetchSize bounds a stored fetch to n records. Ignored by the
// server for current (live) fetches.
func (q *Query) SetFetchSize(n int) {
	q.quantity = &n
}

// SetBackwards controls result direction for stored fetches: true
// returns newest records first.
func (q *Query) SetBackwards(backwards bool) {
	q.backwards = &backwards
}

// SetDefinition sets the session definition and target engine for
// session monitors. Both keys travel in the query object of the
// request document.
func (q *Query) SetDefinition(definition, target string) {
	if definition != "" {
		q.extra["definition"] = definition
	}
	if target != "" {
		q.extra["target"] = target
	}
}

// UpdateFilter attaches the filter as the query's filter root,
// replacing any previous root.
func (q *Query) UpdateFilter(f Filter) {
	q.filter = f
}

// AddInFilter attaches an IN filter built from left and right values
// and returns it. Replaces any previously attached filter root.
func (q *Query) AddInFilter(left Value, right ...Value) *InFilter {
	f := NewInFilter(left, right...)
	q.UpdateFilter(f)
	return f
}

// AddAndFilter attaches an AND filter over the given filters.
func (q *Query) AddAndFilter(filters ...Filter) *AndFilter {
	f := NewAndFilter(filters...)
	q.UpdateFilter(f)
	return f
}

// AddOrFilter attaches an OR filter over the given filters.
func (q *Query) AddOrFilter(filters ...Filter) *OrFilter {
	f := NewOrFilter(filters...)
	q.UpdateFilter(f)
	return f
}

// AddNotFilter attaches a NOT filter negating the given filter.
func (q *Query) AddNotFilter(filter Filter) *NotFilter {
	f := NewNotFilter(filter)
	q.UpdateFilter(f)
	return f
}

// AddDefinedFilter attaches a filter requiring the value to be
// defined in matching records.
func (q *Query) AddDefinedFilter(v Value) *DefinedFilter {
	f := NewDefinedFilter(v)
	q.UpdateFilter(f)
	return f
}

// AddTranslatedFilter attaches an empty translated filter and
// returns it for expression building.
func (q *Query) AddTranslatedFilter() *TranslatedFilter {
	f := NewTranslatedFilter()
	q.UpdateFilter(f)
	return f
}

// EffectiveFieldIDs returns the field ids a formatter should resolve:
// the format's explicit selection when present, otherwise the query's
// defaults.
func (q *Query) EffectiveFieldIDs() []LogField {
	if ids := q.format.FieldIDs(); len(ids) > 0 {
		return ids
	}
	return q.defaults
}

// Clone returns a deep, independently mutable copy of the query.
// Time range, format and filter are copied; the location and default
// field id list are shared. Derived fetches (FetchBatch, FetchLive,
// the monitors' FetchAsElement) always run on a clone so they never
// mutate the caller's query.
func (q *Query) Clone() *Query {
	cp := &Query{
		location:  q.location,
		defaults:  q.defaults,
		format:    q.format.Clone(),
		timeRange: q.timeRange,
		fetchType: q.fetchType,
		extra:     make(map[string]string, len(q.extra)),
	}
	if q.filter != nil {
		cp.filter = q.filter.clone()
	}
	if q.quantity != nil {
		n := *q.quantity
		cp.quantity = &n
	}
	if q.backwards != nil {
		b := *q.backwards
		cp.backwards = &b
	}
	for k, v := range q.extra {
		cp.extra[k] = v
	}
	return cp
}

// Request serializes the query into the request document sent over
// the socket: fetch parameters, the field format, and the query
// object carrying time bounds, fetch type, any session definition
// keys and the filter root.
func (q *Query) Request() map[string]any {
	fetch := map[string]any{}
	if q.quantity != nil {
		fetch["quantity"] = *q.quantity
	}
	if q.backwards != nil {
		fetch["backwards"] = *q.backwards
	}

	queryObj := map[string]any{
		"start_ms": q.timeRange.StartMs,
		"end_ms":   q.timeRange.EndMs,
		"type":     q.fetchType,
	}
	for k, v := range q.extra {
		queryObj[k] = v
	}
	if q.filter != nil {
		queryObj["filter"] = q.filter.filterData()
	}

	return map[string]any{
		"fetch":  fetch,
		"format": q.format.data(),
		"query":  queryObj,
	}
}

// Execute opens a monitoring socket through d, sends the request
// document once, and returns the raw message stream. Execute does
// not mutate the query. The caller owns the stream and must close
// it; for current (live) fetches the server keeps streaming until
// the stream is closed.
func (q *Query) Execute(ctx context.Context, d transport.Dialer, opts ...transport.Option) (*Stream, error) {
	proto, err := transport.Connect(ctx, d, q.location, q.Request(), opts...)
	if err != nil {
		return nil, err
	}
	return &Stream{proto: proto}, nil
}

// FetchRaw executes the query and returns only its non-empty record
// batches. For stored fetches the batch stream terminates once the
// server signals the end of results; for current fetches it streams
// until closed.
func (q *Query) FetchRaw(ctx context.Context, d transport.Dialer, opts ...transport.Option) (*BatchStream, error) {
	s, err := q.Execute(ctx, d, opts...)
	if err != nil {
		return nil, err
	}
	n, ok := q.FetchSize()
	return &BatchStream{
		stream:          s,
		abortAfterFirst: q.fetchType == FetchStored && ok && n == 0,
	}, nil
}

// FetchBatch runs a bounded stored fetch through a formatter. The
// query itself is cloned and never modified: the clone is forced to
// stored mode and given a fetch size of DefaultFetchSize when none
// (or a non-positive one) is set. The formatter factory runs before
// the socket opens so configuration errors surface immediately.
func (q *Query) FetchBatch(ctx context.Context, d transport.Dialer, factory FormatterFactory, opts ...transport.Option) (*FormattedStream, error) {
	clone := q.Clone()
	clone.SetFetchType(FetchStored)
	if n, ok := clone.FetchSize(); !ok || n <= 0 {
		clone.SetFetchSize(DefaultFetchSize)
	}

	formatter, err := factory(ctx, clone)
	if err != nil {
		return nil, err
	}
	batches, err := clone.FetchRaw(ctx, d, opts...)
	if err != nil {
		return nil, err
	}
	return &FormattedStream{batches: batches, formatter: formatter}, nil
}

// FetchLive runs a real-time fetch through a formatter, equivalent to
// pressing Play in the console log view. The query is cloned and
// forced to current mode; no fetch size is defaulted since the server
// ignores it for live fetches. The stream never terminates on its
// own: failing to close it leaks the server connection.
func (q *Query) FetchLive(ctx context.Context, d transport.Dialer, factory FormatterFactory, opts ...transport.Option) (*FormattedStream, error) {
	clone := q.Clone()
	clone.SetFetchType(FetchCurrent)

	formatter, err := factory(ctx, clone)
	if err != nil {
		return nil, err
	}
	batches, err := clone.FetchRaw(ctx, d, opts...)
	if err != nil {
		return nil, err
	}
	return &FormattedStream{batches: batches, formatter: formatter}, nil
}

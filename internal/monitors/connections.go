package monitors

import (
	"context"

	"openwatch/internal/query"
	"openwatch/internal/transport"
	"openwatch/internal/types"
)

var connectionDefaults = []query.LogField{
	query.FieldTimestamp,
	query.FieldNodeID,
	query.FieldSrc,
	query.FieldSport,
	query.FieldDst,
	query.FieldDport,
	query.FieldProtocol,
	query.FieldState,
}

// ConnectionQuery monitors the current connection table of a target
// engine.
type ConnectionQuery struct {
	*query.Query
}

// NewConnectionQuery returns a connection monitor bound to the named
// target engine.
func NewConnectionQuery(target string) *ConnectionQuery {
	q := query.New(query.SessionMonitorLocation, connectionDefaults)
	q.SetDefinition("CONNECTIONS", target)
	return &ConnectionQuery{Query: q}
}

// Connection is one entry of an engine's connection table.
type Connection struct {
	element
}

// Timestamp returns the time the connection was established.
func (c Connection) Timestamp() string { return c.field(query.FieldTimestamp) }

// Engine returns the engine node reporting the connection.
func (c Connection) Engine() string { return c.field(query.FieldNodeID) }

// SourceAddr returns the connection source address.
func (c Connection) SourceAddr() string { return c.field(query.FieldSrc) }

// SourcePort returns the connection source port.
func (c Connection) SourcePort() string { return c.field(query.FieldSport) }

// DestAddr returns the connection destination address.
func (c Connection) DestAddr() string { return c.field(query.FieldDst) }

// DestPort returns the connection destination port.
func (c Connection) DestPort() string { return c.field(query.FieldDport) }

// Protocol returns the IP protocol of the connection.
func (c Connection) Protocol() string { return c.field(query.FieldProtocol) }

// State returns the tracked connection state.
func (c Connection) State() string { return c.field(query.FieldState) }

// FetchAsElement drains a stored fetch and returns the connection
// table entries as typed elements. The query itself is not modified.
func (q *ConnectionQuery) FetchAsElement(ctx context.Context, d transport.Dialer, opts ...transport.Option) ([]Connection, error) {
	return fetchElements(ctx, q.Query, d, func(rec types.Record) Connection {
		return Connection{element{rec: rec}}
	}, opts...)
}

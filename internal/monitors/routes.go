package monitors

import (
	"context"

	"openwatch/internal/query"
	"openwatch/internal/transport"
	"openwatch/internal/types"
)

var routeDefaults = []query.LogField{
	query.FieldTimestamp,
	query.FieldNodeID,
	query.FieldDstIf,
	query.FieldDstVlan,
	query.FieldDstZone,
	query.FieldRouteGateway,
	query.FieldRouteNetwork,
	query.FieldRouteType,
	query.FieldRouteMetric,
}

// RoutingQuery monitors the active routing table of a target engine.
type RoutingQuery struct {
	*query.Query
}

// NewRoutingQuery returns a routing monitor bound to the named target
// engine.
func NewRoutingQuery(target string) *RoutingQuery {
	q := query.New(query.SessionMonitorLocation, routeDefaults)
	q.SetDefinition("ROUTING", target)
	return &RoutingQuery{Query: q}
}

// RouteEntry is one entry of an engine's routing table.
type RouteEntry struct {
	element
}

// Engine returns the engine node owning the route.
func (r RouteEntry) Engine() string { return r.field(query.FieldNodeID) }

// Interface returns the outgoing interface id.
func (r RouteEntry) Interface() string { return r.field(query.FieldDstIf) }

// VlanID returns the VLAN id of the outgoing interface, if any.
func (r RouteEntry) VlanID() string { return r.field(query.FieldDstVlan) }

// Zone returns the zone of the outgoing interface, if any.
func (r RouteEntry) Zone() string { return r.field(query.FieldDstZone) }

// Gateway returns the next-hop gateway address.
func (r RouteEntry) Gateway() string { return r.field(query.FieldRouteGateway) }

// Network returns the destination network of the route.
func (r RouteEntry) Network() string { return r.field(query.FieldRouteNetwork) }

// Type returns the route type, static or dynamic.
func (r RouteEntry) Type() string { return r.field(query.FieldRouteType) }

// Metric returns the route metric.
func (r RouteEntry) Metric() string { return r.field(query.FieldRouteMetric) }

// FetchAsElement drains a stored fetch and returns the routing table
// entries as typed elements. The query itself is not modified.
func (q *RoutingQuery) FetchAsElement(ctx context.Context, d transport.Dialer, opts ...transport.Option) ([]RouteEntry, error) {
	return fetchElements(ctx, q.Query, d, func(rec types.Record) RouteEntry {
		return RouteEntry{element{rec: rec}}
	}, opts...)
}

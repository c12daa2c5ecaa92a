package monitors

import (
	"context"

	"openwatch/internal/query"
	"openwatch/internal/transport"
	"openwatch/internal/types"
)

var vpnSADefaults = []query.LogField{
	query.FieldTimestamp,
	query.FieldNodeID,
	query.FieldVPNID,
	query.FieldSecurityGateway,
	query.FieldPeerSecurityGateway,
	query.FieldEndpoint,
	query.FieldPeerEndpoint,
	query.FieldSAClass,
	query.FieldNegotiationRole,
	query.FieldSrcAddrs,
	query.FieldDstAddrs,
	query.FieldNumBytesSent,
	query.FieldNumBytesReceived,
}

// VPNSAQuery monitors the established VPN security associations of a
// target engine.
type VPNSAQuery struct {
	*query.Query
}

// NewVPNSAQuery returns a VPN SA monitor bound to the named target
// engine.
func NewVPNSAQuery(target string) *VPNSAQuery {
	q := query.New(query.SessionMonitorLocation, vpnSADefaults)
	q.SetDefinition("VPN_SA", target)
	return &VPNSAQuery{Query: q}
}

// VPNSecurityAssoc is one established VPN security association.
type VPNSecurityAssoc struct {
	element
}

// Engine returns the engine node owning the SA.
func (v VPNSecurityAssoc) Engine() string { return v.field(query.FieldNodeID) }

// VPNID returns the VPN identifier the SA belongs to.
func (v VPNSecurityAssoc) VPNID() string { return v.field(query.FieldVPNID) }

// LocalGateway returns the local security gateway.
func (v VPNSecurityAssoc) LocalGateway() string { return v.field(query.FieldSecurityGateway) }

// PeerGateway returns the peer security gateway.
func (v VPNSecurityAssoc) PeerGateway() string { return v.field(query.FieldPeerSecurityGateway) }

// LocalEndpoint returns the local tunnel endpoint address.
func (v VPNSecurityAssoc) LocalEndpoint() string { return v.field(query.FieldEndpoint) }

// PeerEndpoint returns the peer tunnel endpoint address.
func (v VPNSecurityAssoc) PeerEndpoint() string { return v.field(query.FieldPeerEndpoint) }

// SAClass returns the SA class, IKE or IPsec.
func (v VPNSecurityAssoc) SAClass() string { return v.field(query.FieldSAClass) }

// NegotiationRole returns whether this side initiated the SA.
func (v VPNSecurityAssoc) NegotiationRole() string { return v.field(query.FieldNegotiationRole) }

// SourceNetworks returns the protected source networks.
func (v VPNSecurityAssoc) SourceNetworks() string { return v.field(query.FieldSrcAddrs) }

// DestNetworks returns the protected destination networks.
func (v VPNSecurityAssoc) DestNetworks() string { return v.field(query.FieldDstAddrs) }

// BytesSent returns the byte count sent through the SA.
func (v VPNSecurityAssoc) BytesSent() string { return v.field(query.FieldNumBytesSent) }

// BytesReceived returns the byte count received through the SA.
func (v VPNSecurityAssoc) BytesReceived() string { return v.field(query.FieldNumBytesReceived) }

// FetchAsElement drains a stored fetch and returns the established
// SAs as typed elements. The query itself is not modified.
func (q *VPNSAQuery) FetchAsElement(ctx context.Context, d transport.Dialer, opts ...transport.Option) ([]VPNSecurityAssoc, error) {
	return fetchElements(ctx, q.Query, d, func(rec types.Record) VPNSecurityAssoc {
		return VPNSecurityAssoc{element{rec: rec}}
	}, opts...)
}

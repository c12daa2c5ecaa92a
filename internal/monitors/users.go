package monitors

import (
	"context"

	"openwatch/internal/query"
	"openwatch/internal/transport"
	"openwatch/internal/types"
)

var userDefaults = []query.LogField{
	query.FieldTimestamp,
	query.FieldNodeID,
	query.FieldUsername,
	query.FieldSenderDomain,
	query.FieldExpirationTime,
}

// UserQuery monitors the authenticated users currently known to a
// target engine.
type UserQuery struct {
	*query.Query
}

// NewUserQuery returns an authenticated-user monitor bound to the
// named target engine.
func NewUserQuery(target string) *UserQuery {
	q := query.New(query.SessionMonitorLocation, userDefaults)
	q.SetDefinition("USERS", target)
	return &UserQuery{Query: q}
}

// User is one authenticated user entry.
type User struct {
	element
}

// Engine returns the engine node reporting the user.
func (u User) Engine() string { return u.field(query.FieldNodeID) }

// Username returns the authenticated user name.
func (u User) Username() string { return u.field(query.FieldUsername) }

// Domain returns the authentication domain.
func (u User) Domain() string { return u.field(query.FieldSenderDomain) }

// Expiration returns when the authentication expires.
func (u User) Expiration() string { return u.field(query.FieldExpirationTime) }

// FetchAsElement drains a stored fetch and returns the authenticated
// users as typed elements. The query itself is not modified.
func (q *UserQuery) FetchAsElement(ctx context.Context, d transport.Dialer, opts ...transport.Option) ([]User, error) {
	return fetchElements(ctx, q.Query, d, func(rec types.Record) User {
		return User{element{rec: rec}}
	}, opts...)
}

var sslvpnDefaults = []query.LogField{
	query.FieldTimestamp,
	query.FieldNodeID,
	query.FieldUsername,
	query.FieldSessionID,
	query.FieldSrc,
}

// SSLVPNQuery monitors the active SSL VPN sessions of a target
// engine.
type SSLVPNQuery struct {
	*query.Query
}

// NewSSLVPNQuery returns an SSL VPN session monitor bound to the
// named target engine.
func NewSSLVPNQuery(target string) *SSLVPNQuery {
	q := query.New(query.SessionMonitorLocation, sslvpnDefaults)
	q.SetDefinition("SSLVPNV2", target)
	return &SSLVPNQuery{Query: q}
}

// SSLVPNUser is one active SSL VPN session.
type SSLVPNUser struct {
	element
}

// Engine returns the engine node hosting the session.
func (u SSLVPNUser) Engine() string { return u.field(query.FieldNodeID) }

// Username returns the session user name.
func (u SSLVPNUser) Username() string { return u.field(query.FieldUsername) }

// SessionID returns the SSL VPN session id.
func (u SSLVPNUser) SessionID() string { return u.field(query.FieldSessionID) }

// SourceAddr returns the client source address.
func (u SSLVPNUser) SourceAddr() string { return u.field(query.FieldSrc) }

// FetchAsElement drains a stored fetch and returns the SSL VPN
// sessions as typed elements. The query itself is not modified.
func (q *SSLVPNQuery) FetchAsElement(ctx context.Context, d transport.Dialer, opts ...transport.Option) ([]SSLVPNUser, error) {
	return fetchElements(ctx, q.Query, d, func(rec types.Record) SSLVPNUser {
		return SSLVPNUser{element{rec: rec}}
	}, opts...)
}

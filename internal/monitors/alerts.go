package monitors

import (
	"context"

	"openwatch/internal/query"
	"openwatch/internal/transport"
	"openwatch/internal/types"
)

var alertDefaults = []query.LogField{
	query.FieldTimestamp,
	query.FieldAlertSeverity,
	query.FieldNodeID,
	query.FieldSrc,
	query.FieldDst,
	query.FieldProtocol,
	query.FieldEvent,
	query.FieldInfoMsg,
}

// ActiveAlertQuery monitors the currently active alerts on the shared
// domain or a target engine.
type ActiveAlertQuery struct {
	*query.Query
}

// NewActiveAlertQuery returns an active-alert monitor. Target may be
// empty to monitor the whole domain.
func NewActiveAlertQuery(target string) *ActiveAlertQuery {
	q := query.New(query.SessionMonitorLocation, alertDefaults)
	q.SetDefinition("ACTIVE_ALERTS", target)
	return &ActiveAlertQuery{Query: q}
}

// ActiveAlert is one currently active alert.
type ActiveAlert struct {
	element
}

// Timestamp returns the time the alert fired.
func (a ActiveAlert) Timestamp() string { return a.field(query.FieldTimestamp) }

// Severity returns the alert severity.
func (a ActiveAlert) Severity() string { return a.field(query.FieldAlertSeverity) }

// Engine returns the engine node that raised the alert.
func (a ActiveAlert) Engine() string { return a.field(query.FieldNodeID) }

// SourceAddr returns the source address of the triggering traffic.
func (a ActiveAlert) SourceAddr() string { return a.field(query.FieldSrc) }

// DestAddr returns the destination address of the triggering traffic.
func (a ActiveAlert) DestAddr() string { return a.field(query.FieldDst) }

// Protocol returns the IP protocol of the triggering traffic.
func (a ActiveAlert) Protocol() string { return a.field(query.FieldProtocol) }

// Event returns the alert event description.
func (a ActiveAlert) Event() string { return a.field(query.FieldEvent) }

// Message returns the alert information message.
func (a ActiveAlert) Message() string { return a.field(query.FieldInfoMsg) }

// FetchAsElement drains a stored fetch and returns the active alerts
// as typed elements. The query itself is not modified.
func (q *ActiveAlertQuery) FetchAsElement(ctx context.Context, d transport.Dialer, opts ...transport.Option) ([]ActiveAlert, error) {
	return fetchElements(ctx, q.Query, d, func(rec types.Record) ActiveAlert {
		return ActiveAlert{element{rec: rec}}
	}, opts...)
}

package monitors

import (
	"context"

	"openwatch/internal/query"
	"openwatch/internal/transport"
	"openwatch/internal/types"
)

var blocklistDefaults = []query.LogField{
	query.FieldTimestamp,
	query.FieldNodeID,
	query.FieldBlockListEntryID,
	query.FieldBlockLister,
	query.FieldBlockListEntrySourceIP,
	query.FieldBlockListEntryDestIP,
	query.FieldBlockListEntryDuration,
}

// BlocklistQuery monitors the active blocklist entries of a target
// engine.
type BlocklistQuery struct {
	*query.Query
}

// NewBlocklistQuery returns a blocklist monitor bound to the named
// target engine.
func NewBlocklistQuery(target string) *BlocklistQuery {
	q := query.New(query.SessionMonitorLocation, blocklistDefaults)
	q.SetDefinition("BLOCKLIST", target)
	return &BlocklistQuery{Query: q}
}

// BlocklistEntry is one active blocklist entry.
type BlocklistEntry struct {
	element
}

// Engine returns the engine node enforcing the entry.
func (b BlocklistEntry) Engine() string { return b.field(query.FieldNodeID) }

// EntryID returns the blocklist entry id, usable for removal.
func (b BlocklistEntry) EntryID() string { return b.field(query.FieldBlockListEntryID) }

// Blocklister returns who inserted the entry.
func (b BlocklistEntry) Blocklister() string { return b.field(query.FieldBlockLister) }

// SourceAddr returns the blocked source address or network.
func (b BlocklistEntry) SourceAddr() string { return b.field(query.FieldBlockListEntrySourceIP) }

// DestAddr returns the blocked destination address or network.
func (b BlocklistEntry) DestAddr() string { return b.field(query.FieldBlockListEntryDestIP) }

// Duration returns the entry lifetime in seconds.
func (b BlocklistEntry) Duration() string { return b.field(query.FieldBlockListEntryDuration) }

// FetchAsElement drains a stored fetch and returns the blocklist
// entries as typed elements. The query itself is not modified.
func (q *BlocklistQuery) FetchAsElement(ctx context.Context, d transport.Dialer, opts ...transport.Option) ([]BlocklistEntry, error) {
	return fetchElements(ctx, q.Query, d, func(rec types.Record) BlocklistEntry {
		return BlocklistEntry{element{rec: rec}}
	}, opts...)
}

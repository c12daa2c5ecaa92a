// Package monitors provides preconfigured queries for the individual
// monitoring views: the log viewer plus the engine-state monitors
// (connections, routes, users, VPN SAs, active alerts, blocklist).
// Each monitor binds a socket location, a session definition and a
// sensible default field set, and can return results either as raw
// record batches through the embedded Query or as typed read-only
// elements through FetchAsElement.
package monitors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"openwatch/internal/query"
	"openwatch/internal/transport"
	"openwatch/internal/types"
)

// element wraps one result record keyed by numeric field id and gives
// the typed monitors their accessor base.
type element struct {
	rec types.Record
}

// Record returns the underlying record.
func (e element) Record() types.Record { return e.rec }

// field returns the display value of a field, empty when absent.
func (e element) field(id query.LogField) string {
	return stringField(e.rec, id)
}

func stringField(rec types.Record, id query.LogField) string {
	v, ok := rec[strconv.Itoa(int(id))]
	if !ok || v == nil {
		return ""
	}
	if s, isString := v.(string); isString {
		return s
	}
	return strconvAny(v)
}

func strconvAny(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case bool:
		return strconv.FormatBool(n)
	}
	return fmt.Sprint(v)
}

// fetchElements drains a stored fetch of the query as typed elements.
// The query is cloned and the clone switched to a raw format keyed by
// numeric field id, so accessor lookups are stable regardless of any
// field selection or format the caller configured.
func fetchElements[T any](ctx context.Context, q *query.Query, d transport.Dialer, wrap func(types.Record) T, opts ...transport.Option) ([]T, error) {
	clone := q.Clone()
	clone.SetFetchType(query.FetchStored)

	format := query.NewRawFormat()
	if err := format.SetFieldFormat(query.FieldFormatID); err != nil {
		return nil, err
	}
	clone.SetFormat(format)

	batches, err := clone.FetchRaw(ctx, d, opts...)
	if err != nil {
		return nil, err
	}
	defer batches.Close()

	var out []T
	for {
		batch, err := batches.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		for _, rec := range batch {
			out = append(out, wrap(rec))
		}
	}
}

// Package render turns raw record batches into human-consumable
// output: fixed-width tables, CSV, or the untouched records. The
// table and CSV formatters resolve the query's effective field ids
// into an ordered header at construction time and keep per-instance
// state across batches; construct a fresh formatter per fetch.
package render

import (
	"context"
	"fmt"

	"openwatch/internal/query"
	"openwatch/internal/types"
)

// FieldSource resolves field ids into field metadata. Implemented by
// fields.Resolver.
type FieldSource interface {
	ResolveFields(ctx context.Context, ids []query.LogField) ([]types.FieldInfo, error)
}

// buildHeaders computes the ordered header labels for a query. It
// fails when the query's format has no single field format (combined
// formats must be consumed raw) or when the server cannot resolve
// the requested ids. Failures happen here, at construction, never
// per batch.
func buildHeaders(ctx context.Context, q *query.Query, src FieldSource) ([]string, error) {
	fieldFormat, ok := q.Format().FieldFormat()
	if !ok {
		return nil, fmt.Errorf("%w: combined formats must be fetched as raw records",
			query.ErrUnsupportedFieldFormat)
	}

	ids := q.EffectiveFieldIDs()
	fields, err := src.ResolveFields(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, query.ErrFieldsUnresolved
	}

	var headers []string
	for _, id := range ids {
		for _, field := range fields {
			if field.ID == int(id) {
				headers = append(headers, field.Label(string(fieldFormat)))
				break
			}
		}
	}
	if len(headers) == 0 {
		return nil, query.ErrFieldsUnresolved
	}
	return headers, nil
}

// cell renders a record value for display, substituting missing for
// absent keys.
func cell(rec types.Record, key, missing string) string {
	v, ok := rec[key]
	if !ok || v == nil {
		return missing
	}
	if s, isString := v.(string); isString {
		return s
	}
	return fmt.Sprint(v)
}

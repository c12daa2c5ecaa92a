package render

import (
	"context"
	"fmt"
	"strings"

	"openwatch/internal/query"
	"openwatch/internal/types"
)

// Table renders batches as space-separated, left-justified columns.
// Column widths start at the header label lengths and only ever grow;
// whenever a batch forces a column wider, the header and divider are
// emitted again ahead of the rows so the new alignment is readable.
// Missing values render as "-".
type Table struct {
	headers     []string
	widths      map[string]int
	emittedOnce bool
}

// NewTable builds a table formatter for the query. Fails when the
// query carries a combined format or the field ids do not resolve.
func NewTable(ctx context.Context, q *query.Query, src FieldSource) (*Table, error) {
	headers, err := buildHeaders(ctx, q, src)
	if err != nil {
		return nil, err
	}
	widths := make(map[string]int, len(headers))
	for _, h := range headers {
		widths[h] = len(h)
	}
	return &Table{headers: headers, widths: widths}, nil
}

// Format renders one batch, returning the text as a string. The first
// call, and any call that widened a column, starts with the header and
// divider rows.
func (t *Table) Format(batch types.Batch) any {
	grew := false
	for _, h := range t.headers {
		for _, rec := range batch {
			if w := len(cell(rec, h, "")); w > t.widths[h] {
				t.widths[h] = w
				grew = true
			}
		}
	}

	var b strings.Builder
	if !t.emittedOnce || grew {
		t.writeRow(&b, func(h string) string { return h })
		t.writeRow(&b, func(h string) string { return strings.Repeat("-", t.widths[h]) })
		t.emittedOnce = true
	}
	for _, rec := range batch {
		rec := rec
		t.writeRow(&b, func(h string) string { return cell(rec, h, "-") })
	}
	return b.String()
}

func (t *Table) writeRow(b *strings.Builder, value func(h string) string) {
	cells := make([]string, len(t.headers))
	for i, h := range t.headers {
		cells[i] = fmt.Sprintf("%-*s", t.widths[h], value(h))
	}
	b.WriteString(strings.Join(cells, " "))
	b.WriteByte('\n')
}

// TableFactory adapts NewTable into a formatter factory resolving
// fields through src.
func TableFactory(src FieldSource) query.FormatterFactory {
	return func(ctx context.Context, q *query.Query) (query.Formatter, error) {
		return NewTable(ctx, q, src)
	}
}

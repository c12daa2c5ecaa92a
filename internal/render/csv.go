package render

import (
	"context"
	"strings"

	"openwatch/internal/query"
	"openwatch/internal/types"
)

// CSV renders batches as comma-separated rows. The header row is
// emitted exactly once, ahead of the first batch. Commas inside
// values are replaced with spaces so the column count stays stable;
// missing values render as empty cells.
type CSV struct {
	headers     []string
	emittedOnce bool
}

// NewCSV builds a CSV formatter for the query. Fails when the query
// carries a combined format or the field ids do not resolve.
func NewCSV(ctx context.Context, q *query.Query, src FieldSource) (*CSV, error) {
	headers, err := buildHeaders(ctx, q, src)
	if err != nil {
		return nil, err
	}
	return &CSV{headers: headers}, nil
}

// Format renders one batch, returning the text as a string.
func (c *CSV) Format(batch types.Batch) any {
	var b strings.Builder
	if !c.emittedOnce {
		b.WriteString(strings.Join(c.headers, ","))
		b.WriteByte('\n')
		c.emittedOnce = true
	}
	row := make([]string, len(c.headers))
	for _, rec := range batch {
		for i, h := range c.headers {
			row[i] = strings.ReplaceAll(cell(rec, h, ""), ",", " ")
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// CSVFactory adapts NewCSV into a formatter factory resolving fields
// through src.
func CSVFactory(src FieldSource) query.FormatterFactory {
	return func(ctx context.Context, q *query.Query) (query.Formatter, error) {
		return NewCSV(ctx, q, src)
	}
}

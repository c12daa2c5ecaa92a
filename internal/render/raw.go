package render

import (
	"context"

	"openwatch/internal/query"
	"openwatch/internal/types"
)

// Raw passes record batches through untouched. It needs no field
// resolution and works with every format, combined included.
type Raw struct{}

// Format returns the batch unchanged.
func (Raw) Format(batch types.Batch) any { return batch }

// RawFactory returns a formatter factory producing Raw formatters.
func RawFactory() query.FormatterFactory {
	return func(context.Context, *query.Query) (query.Formatter, error) {
		return Raw{}, nil
	}
}

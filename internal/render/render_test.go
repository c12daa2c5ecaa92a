package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"openwatch/internal/query"
	"openwatch/internal/types"
)

// stubSource resolves every requested id from a fixed field table.
type stubSource struct {
	fields []types.FieldInfo
	err    error
}

func (s stubSource) ResolveFields(ctx context.Context, ids []query.LogField) ([]types.FieldInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []types.FieldInfo
	for _, id := range ids {
		for _, f := range s.fields {
			if f.ID == int(id) {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

var testFields = stubSource{fields: []types.FieldInfo{
	{ID: int(query.FieldTimestamp), Name: "Timestamp", Pretty: "Creation Time"},
	{ID: int(query.FieldSrc), Name: "Src", Pretty: "Src Addr"},
	{ID: int(query.FieldDst), Name: "Dst", Pretty: "Dst Addr"},
}}

func newTestQuery(ids ...query.LogField) *query.Query {
	q := query.New(query.LogViewerLocation, nil)
	q.Format().(*query.TextFormat).SetFieldIDs(ids...)
	return q
}

func TestTableFirstBatchEmitsHeader(t *testing.T) {
	table, err := NewTable(context.Background(), newTestQuery(query.FieldSrc, query.FieldDst), testFields)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	out := table.Format(types.Batch{
		{"Src Addr": "1.1.1.1", "Dst Addr": "2.2.2.2"},
	}).(string)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header, divider and one row:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Src Addr") || !strings.Contains(lines[0], "Dst Addr") {
		t.Errorf("header line = %q", lines[0])
	}
	if strings.Trim(lines[1], "- ") != "" {
		t.Errorf("divider line = %q, want dashes only", lines[1])
	}
	if !strings.HasPrefix(lines[2], "1.1.1.1") {
		t.Errorf("row line = %q", lines[2])
	}
}

func TestTableWidthsOnlyGrowAndHeaderReEmits(t *testing.T) {
	table, err := NewTable(context.Background(), newTestQuery(query.FieldSrc), testFields)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	// "Src Addr" is 8 wide; a 15-char address must widen the column.
	first := table.Format(types.Batch{{"Src Addr": "192.168.100.254"}}).(string)
	firstLines := strings.Split(strings.TrimRight(first, "\n"), "\n")
	if len(firstLines) != 3 {
		t.Fatalf("first batch: got %d lines, want 3:\n%s", len(firstLines), first)
	}
	if got := len(firstLines[1]); got != 15 {
		t.Errorf("divider width = %d, want 15", got)
	}

	// Narrower data keeps the width and needs no header.
	second := table.Format(types.Batch{{"Src Addr": "1.1.1.1"}}).(string)
	secondLines := strings.Split(strings.TrimRight(second, "\n"), "\n")
	if len(secondLines) != 1 {
		t.Fatalf("second batch: got %d lines, want 1 (no re-emitted header):\n%s", len(secondLines), second)
	}
	if got := len(secondLines[0]); got != 15 {
		t.Errorf("padded row width = %d, want 15", got)
	}

	// Wider data grows the column again and re-emits the header.
	third := table.Format(types.Batch{{"Src Addr": "2001:db8::1:0:0:abcd"}}).(string)
	thirdLines := strings.Split(strings.TrimRight(third, "\n"), "\n")
	if len(thirdLines) != 3 {
		t.Fatalf("third batch: got %d lines, want re-emitted header plus row:\n%s", len(thirdLines), third)
	}
}

func TestTableMissingValuesRenderDash(t *testing.T) {
	table, err := NewTable(context.Background(), newTestQuery(query.FieldSrc, query.FieldDst), testFields)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	out := table.Format(types.Batch{{"Src Addr": "1.1.1.1"}}).(string)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	row := lines[len(lines)-1]
	if !strings.Contains(row, "-") {
		t.Errorf("row %q does not mark the missing Dst Addr with a dash", row)
	}
}

func TestTableHeaderUsesFieldFormat(t *testing.T) {
	q := newTestQuery(query.FieldSrc)
	if err := q.Format().(*query.TextFormat).SetFieldFormat(query.FieldFormatName); err != nil {
		t.Fatalf("SetFieldFormat failed: %v", err)
	}
	table, err := NewTable(context.Background(), q, testFields)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	out := table.Format(types.Batch{}).(string)
	if !strings.HasPrefix(out, "Src") || strings.HasPrefix(out, "Src Addr") {
		t.Errorf("header = %q, want internal name Src", strings.SplitN(out, "\n", 2)[0])
	}
}

func TestCSVHeaderEmittedOnce(t *testing.T) {
	csv, err := NewCSV(context.Background(), newTestQuery(query.FieldSrc, query.FieldDst), testFields)
	if err != nil {
		t.Fatalf("NewCSV failed: %v", err)
	}

	first := csv.Format(types.Batch{{"Src Addr": "1.1.1.1", "Dst Addr": "2.2.2.2"}}).(string)
	wantFirst := "Src Addr,Dst Addr\n1.1.1.1,2.2.2.2\n"
	if first != wantFirst {
		t.Errorf("first batch = %q, want %q", first, wantFirst)
	}

	second := csv.Format(types.Batch{{"Src Addr": "3.3.3.3"}}).(string)
	wantSecond := "3.3.3.3,\n"
	if second != wantSecond {
		t.Errorf("second batch = %q, want %q (no header, empty missing cell)", second, wantSecond)
	}
}

func TestCSVScrubsCommas(t *testing.T) {
	csv, err := NewCSV(context.Background(), newTestQuery(query.FieldSrc), testFields)
	if err != nil {
		t.Fatalf("NewCSV failed: %v", err)
	}
	out := csv.Format(types.Batch{{"Src Addr": "a,b,c"}}).(string)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if got := lines[len(lines)-1]; got != "a b c" {
		t.Errorf("scrubbed value = %q, want %q", got, "a b c")
	}
}

func TestFormattersRejectCombinedFormat(t *testing.T) {
	q := query.New(query.LogViewerLocation, nil)
	q.SetFormat(query.NewCombinedFormat(map[string]query.Format{
		"a": query.NewTextFormat(),
	}))

	if _, err := NewTable(context.Background(), q, testFields); !errors.Is(err, query.ErrUnsupportedFieldFormat) {
		t.Errorf("NewTable error = %v, want ErrUnsupportedFieldFormat", err)
	}
	if _, err := NewCSV(context.Background(), q, testFields); !errors.Is(err, query.ErrUnsupportedFieldFormat) {
		t.Errorf("NewCSV error = %v, want ErrUnsupportedFieldFormat", err)
	}
}

func TestFormattersRejectUnresolvableFields(t *testing.T) {
	empty := stubSource{}
	q := newTestQuery(query.FieldSrc)
	if _, err := NewTable(context.Background(), q, empty); !errors.Is(err, query.ErrFieldsUnresolved) {
		t.Errorf("NewTable error = %v, want ErrFieldsUnresolved", err)
	}

	failing := stubSource{err: errors.New("socket broke")}
	if _, err := NewCSV(context.Background(), q, failing); err == nil {
		t.Error("NewCSV swallowed the resolution error")
	}
}

func TestRawPassesBatchThrough(t *testing.T) {
	batch := types.Batch{{"anything": 1}}
	out := Raw{}.Format(batch)
	got, ok := out.(types.Batch)
	if !ok {
		t.Fatalf("Format returned %T, want types.Batch", out)
	}
	if len(got) != 1 || got[0]["anything"] != 1 {
		t.Errorf("Format altered the batch: %v", got)
	}
}

func TestRawFactoryAcceptsCombinedFormat(t *testing.T) {
	q := query.New(query.LogViewerLocation, nil)
	q.SetFormat(query.NewCombinedFormat(map[string]query.Format{"a": query.NewRawFormat()}))
	if _, err := RawFactory()(context.Background(), q); err != nil {
		t.Errorf("RawFactory rejected a combined format: %v", err)
	}
}

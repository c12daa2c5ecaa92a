package query

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/gorilla/websocket"

	"openwatch/internal/transport"
)

func TestRequestShape(t *testing.T) {
	q := New(SessionMonitorLocation, []LogField{FieldTimestamp, FieldSrc})
	q.TimeRange().Custom(1000, 2000)
	q.SetFetchSize(50)
	q.SetBackwards(true)
	q.SetDefinition("CONNECTIONS", "helsinki-fw")
	q.AddInFilter(FieldValue(FieldSrc), IPValue("192.168.4.84"))

	req := q.Request()

	fetch := req["fetch"].(map[string]any)
	if got := fetch["quantity"]; got != 50 {
		t.Errorf("fetch.quantity = %v, want 50", got)
	}
	if got := fetch["backwards"]; got != true {
		t.Errorf("fetch.backwards = %v, want true", got)
	}

	format := req["format"].(map[string]any)
	if got := format["type"]; got != "texts" {
		t.Errorf("format.type = %v, want texts", got)
	}

	queryObj := req["query"].(map[string]any)
	if got := queryObj["start_ms"]; got != int64(1000) {
		t.Errorf("query.start_ms = %v, want 1000", got)
	}
	if got := queryObj["end_ms"]; got != int64(2000) {
		t.Errorf("query.end_ms = %v, want 2000", got)
	}
	if got := queryObj["type"]; got != FetchStored {
		t.Errorf("query.type = %v, want %s", got, FetchStored)
	}
	if got := queryObj["definition"]; got != "CONNECTIONS" {
		t.Errorf("query.definition = %v, want CONNECTIONS", got)
	}
	if got := queryObj["target"]; got != "helsinki-fw" {
		t.Errorf("query.target = %v, want helsinki-fw", got)
	}
	filter := queryObj["filter"].(map[string]any)
	if got := filter["type"]; got != "in" {
		t.Errorf("query.filter.type = %v, want in", got)
	}
}

func TestRequestOmitsUnsetFetchParams(t *testing.T) {
	q := New(LogViewerLocation, nil)
	req := q.Request()

	fetch := req["fetch"].(map[string]any)
	if _, ok := fetch["quantity"]; ok {
		t.Error("fetch.quantity present on unbounded query")
	}
	if _, ok := fetch["backwards"]; ok {
		t.Error("fetch.backwards present without SetBackwards")
	}
	queryObj := req["query"].(map[string]any)
	if _, ok := queryObj["filter"]; ok {
		t.Error("query.filter present without a filter")
	}
}

func TestAddFilterReplacesRoot(t *testing.T) {
	q := New(LogViewerLocation, nil)
	q.AddInFilter(FieldValue(FieldSrc), IPValue("1.1.1.1"))
	q.AddTranslatedFilter().Expression("$Event == 2")

	queryObj := q.Request()["query"].(map[string]any)
	filter := queryObj["filter"].(map[string]any)
	if got := filter["type"]; got != "translated" {
		t.Errorf("filter root type = %v, want translated (latest attach wins)", got)
	}
}

func TestCloneIsolation(t *testing.T) {
	q := New(LogViewerLocation, []LogField{FieldTimestamp})
	q.TimeRange().Custom(1000, 2000)
	q.SetFetchSize(10)
	q.AddInFilter(FieldValue(FieldSrc), IPValue("1.1.1.1"))
	q.Format().(*TextFormat).SetFieldIDs(FieldSrc)

	before := q.Request()

	clone := q.Clone()
	clone.SetFetchType(FetchCurrent)
	clone.SetFetchSize(999)
	clone.SetBackwards(false)
	clone.TimeRange().Custom(5000, 6000)
	clone.AddTranslatedFilter().Expression("$Event == 1")
	clone.Format().(*TextFormat).SetFieldIDs(FieldDst)
	clone.SetDefinition("CONNECTIONS", "other-fw")

	after := q.Request()
	if !reflect.DeepEqual(before, after) {
		t.Errorf("original request changed after clone mutation:\nbefore: %v\nafter:  %v", before, after)
	}
}

func TestEffectiveFieldIDs(t *testing.T) {
	defaults := []LogField{FieldTimestamp, FieldSrc}
	q := New(LogViewerLocation, defaults)

	if got := q.EffectiveFieldIDs(); !reflect.DeepEqual(got, defaults) {
		t.Errorf("EffectiveFieldIDs() = %v, want defaults %v", got, defaults)
	}

	q.Format().(*TextFormat).SetFieldIDs(FieldDst)
	if got := q.EffectiveFieldIDs(); !reflect.DeepEqual(got, []LogField{FieldDst}) {
		t.Errorf("EffectiveFieldIDs() = %v, want format selection [%d]", got, FieldDst)
	}
}

// dialFunc adapts a function to transport.Dialer for tests.
type dialFunc func(ctx context.Context, location string) (*websocket.Conn, error)

func (f dialFunc) DialSocket(ctx context.Context, location string) (*websocket.Conn, error) {
	return f(ctx, location)
}

var errNoDial = errors.New("dial refused")

func refuseDial(ctx context.Context, location string) (*websocket.Conn, error) {
	return nil, errNoDial
}

func TestFetchBatchConfiguresClone(t *testing.T) {
	q := New(LogViewerLocation, []LogField{FieldTimestamp})
	q.SetFetchType(FetchCurrent)

	var seen *Query
	factory := func(ctx context.Context, clone *Query) (Formatter, error) {
		seen = clone
		return nil, errors.New("stop before dialing")
	}

	_, err := q.FetchBatch(context.Background(), dialFunc(refuseDial), factory)
	if err == nil {
		t.Fatal("FetchBatch succeeded, want factory error")
	}
	if seen == nil {
		t.Fatal("formatter factory was not called")
	}
	if seen == q {
		t.Error("factory received the original query, want a clone")
	}
	if got := seen.FetchType(); got != FetchStored {
		t.Errorf("clone fetch type = %q, want stored", got)
	}
	n, ok := seen.FetchSize()
	if !ok || n != DefaultFetchSize {
		t.Errorf("clone fetch size = %d (set=%v), want default %d", n, ok, DefaultFetchSize)
	}

	// Original stays untouched
	if got := q.FetchType(); got != FetchCurrent {
		t.Errorf("original fetch type = %q, want current", got)
	}
	if _, ok := q.FetchSize(); ok {
		t.Error("original gained a fetch size")
	}
}

func TestFetchBatchKeepsExplicitQuantity(t *testing.T) {
	q := New(LogViewerLocation, nil)
	q.SetFetchSize(25)

	var seen *Query
	factory := func(ctx context.Context, clone *Query) (Formatter, error) {
		seen = clone
		return nil, errors.New("stop before dialing")
	}

	q.FetchBatch(context.Background(), dialFunc(refuseDial), factory)
	if n, ok := seen.FetchSize(); !ok || n != 25 {
		t.Errorf("clone fetch size = %d (set=%v), want 25", n, ok)
	}
}

func TestFetchLiveForcesCurrent(t *testing.T) {
	q := New(LogViewerLocation, nil)

	var seen *Query
	factory := func(ctx context.Context, clone *Query) (Formatter, error) {
		seen = clone
		return nil, errors.New("stop before dialing")
	}

	q.FetchLive(context.Background(), dialFunc(refuseDial), factory)
	if got := seen.FetchType(); got != FetchCurrent {
		t.Errorf("clone fetch type = %q, want current", got)
	}
	if _, ok := seen.FetchSize(); ok {
		t.Error("live clone gained a fetch size")
	}
	if got := q.FetchType(); got != FetchStored {
		t.Errorf("original fetch type = %q, want stored", got)
	}
}

func TestFetchBatchFactoryFailureSkipsDial(t *testing.T) {
	dialed := false
	d := dialFunc(func(ctx context.Context, location string) (*websocket.Conn, error) {
		dialed = true
		return nil, errNoDial
	})
	factory := func(ctx context.Context, clone *Query) (Formatter, error) {
		return nil, errors.New("bad configuration")
	}

	_, err := New(LogViewerLocation, nil).FetchBatch(context.Background(), d, factory)
	if err == nil {
		t.Fatal("FetchBatch succeeded, want factory error")
	}
	if dialed {
		t.Error("socket was dialed despite formatter construction failing")
	}
}

func TestExecuteWrapsDialError(t *testing.T) {
	_, err := New(LogViewerLocation, nil).Execute(context.Background(), dialFunc(refuseDial))
	if !errors.Is(err, errNoDial) {
		t.Errorf("Execute error = %v, want wrapped dial error", err)
	}
}

var _ transport.Dialer = dialFunc(nil)

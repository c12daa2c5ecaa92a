package archive

import (
	"path/filepath"
	"testing"

	"openwatch/internal/types"
)

func newTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()
	a, err := NewSQLiteArchive(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewSQLiteArchive failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestWriteBatchAndCount(t *testing.T) {
	a := newTestArchive(t)

	batch := types.Batch{
		{"Src": "1.1.1.1", "Dport": float64(443)},
		{"Src": "2.2.2.2", "Dport": float64(80)},
	}
	if err := a.WriteBatch("logs", batch); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}
	if err := a.WriteBatch("connections", types.Batch{{"State": "ESTABLISHED"}}); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}

	count, err := a.Count("logs")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Count(logs) = %d, want 2", count)
	}

	total, err := a.Count("")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Count() = %d, want 3", total)
	}
}

func TestWriteEmptyBatchIsNoop(t *testing.T) {
	a := newTestArchive(t)
	if err := a.WriteBatch("logs", nil); err != nil {
		t.Fatalf("WriteBatch(nil) failed: %v", err)
	}
	count, err := a.Count("")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	a := newTestArchive(t)

	if err := a.WriteBatch("logs", types.Batch{{"seq": float64(1)}}); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}
	if err := a.WriteBatch("logs", types.Batch{{"seq": float64(2)}}); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}

	recent, err := a.Recent("logs", 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("len(recent) = %d, want 1", len(recent))
	}
	if got := recent[0]["seq"]; got != float64(2) {
		t.Errorf("newest record seq = %v, want 2", got)
	}
}

func TestRecentFiltersByMonitor(t *testing.T) {
	a := newTestArchive(t)
	if err := a.WriteBatch("logs", types.Batch{{"kind": "log"}}); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}
	if err := a.WriteBatch("routes", types.Batch{{"kind": "route"}}); err != nil {
		t.Fatalf("WriteBatch failed: %v", err)
	}

	recent, err := a.Recent("routes", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 || recent[0]["kind"] != "route" {
		t.Errorf("Recent(routes) = %v, want the single route record", recent)
	}
}

// Package archive captures fetched record batches into a local SQLite
// database so monitoring sessions can be replayed or inspected offline.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"openwatch/internal/types"

	_ "modernc.org/sqlite"
)

// SQLiteArchive stores record batches in a SQLite database running in
// WAL mode.
type SQLiteArchive struct {
	db *sql.DB
}

// NewSQLiteArchive opens or creates an archive database at dbPath.
func NewSQLiteArchive(dbPath string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", dbPath+"?_fk=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &SQLiteArchive{db: db}
	if err := a.configureWALMode(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure WAL mode: %w", err)
	}
	if err := a.initializeDatabase(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return a, nil
}

// configureWALMode configures SQLite to use WAL mode with settings
// suited to a steady stream of small batch inserts.
func (a *SQLiteArchive) configureWALMode() error {
	if _, err := a.db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := a.db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		return fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := a.db.Exec("PRAGMA wal_autocheckpoint = 1000"); err != nil {
		return fmt.Errorf("failed to set WAL auto-checkpoint: %w", err)
	}
	if _, err := a.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	var journalMode string
	if err := a.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("failed to enable WAL mode, current mode: %s", journalMode)
	}
	return nil
}

// initializeDatabase creates the records table and its indexes.
func (a *SQLiteArchive) initializeDatabase() error {
	createRecordsTable := `
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		monitor TEXT NOT NULL,
		record TEXT NOT NULL, -- JSON string
		captured_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := a.db.Exec(createRecordsTable); err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_records_monitor ON records(monitor);",
		"CREATE INDEX IF NOT EXISTS idx_records_captured_at ON records(captured_at);",
	}
	for _, indexSQL := range indexes {
		if _, err := a.db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// WriteBatch stores every record of the batch under the given monitor
// name in one transaction.
func (a *SQLiteArchive) WriteBatch(monitor string, batch types.Batch) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO records (monitor, record) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range batch {
		jsonBytes, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		if _, err := stmt.Exec(monitor, string(jsonBytes)); err != nil {
			return fmt.Errorf("failed to store record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Recent returns the most recently captured records for a monitor, up
// to the given limit, newest first.
func (a *SQLiteArchive) Recent(monitor string, limit int) (types.Batch, error) {
	rows, err := a.db.Query(
		"SELECT record FROM records WHERE monitor = ? ORDER BY id DESC LIMIT ?",
		monitor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent records: %w", err)
	}
	defer rows.Close()

	var batch types.Batch
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		batch = append(batch, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return batch, nil
}

// Count returns the number of records captured for a monitor. An
// empty monitor name counts everything.
func (a *SQLiteArchive) Count(monitor string) (int64, error) {
	var count int64
	var err error
	if monitor == "" {
		err = a.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	} else {
		err = a.db.QueryRow("SELECT COUNT(*) FROM records WHERE monitor = ?", monitor).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// Cleanup removes records captured before the retention period and
// reclaims the space.
func (a *SQLiteArchive) Cleanup(retentionDays int) error {
	cutoffTime := time.Now().AddDate(0, 0, -retentionDays)

	result, err := a.db.Exec("DELETE FROM records WHERE captured_at < ?", cutoffTime)
	if err != nil {
		return fmt.Errorf("failed to cleanup old records: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get cleanup result: %w", err)
	}
	if rowsAffected > 0 {
		if _, err := a.db.Exec("VACUUM"); err != nil {
			return fmt.Errorf("failed to vacuum database: %w", err)
		}
	}
	return nil
}

// Close checkpoints the WAL and closes the database.
func (a *SQLiteArchive) Close() error {
	if _, err := a.db.Exec("PRAGMA wal_checkpoint(RESTART)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	return a.db.Close()
}

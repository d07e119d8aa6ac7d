package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"orgdir/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  createdTime TEXT,
  fields_json TEXT NOT NULL,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  source TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceRecords makes the mirror an exact copy of records, keeping their
// order for later listing.
func (d *DB) ReplaceRecords(records []internal.RawRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO records (id, createdTime, fields_json, lastSeenAt) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		fields := rec.Fields
		if fields == nil {
			fields = internal.Fields{}
		}
		fieldsJSON, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", rec.ID, err)
		}
		if _, err := stmt.Exec(rec.ID, rec.CreatedTime, string(fieldsJSON)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRecords(ctx context.Context) ([]internal.RawRecord, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT id, createdTime, fields_json FROM records ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]internal.RawRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) FindRecord(ctx context.Context, id string) (internal.RawRecord, error) {
	row := d.conn.QueryRowContext(ctx, `SELECT id, createdTime, fields_json FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return internal.RawRecord{}, fmt.Errorf("%w: %s", internal.ErrRecordNotFound, id)
	}
	return rec, err
}

func (d *DB) CountRecords() (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (internal.RawRecord, error) {
	var rec internal.RawRecord
	var createdTime sql.NullString
	var fieldsJSON string
	if err := s.Scan(&rec.ID, &createdTime, &fieldsJSON); err != nil {
		return internal.RawRecord{}, err
	}
	rec.CreatedTime = createdTime.String
	rec.Fields = internal.Fields{}
	if err := json.Unmarshal([]byte(fieldsJSON), &rec.Fields); err != nil {
		return internal.RawRecord{}, fmt.Errorf("decode record %s: %w", rec.ID, err)
	}
	return rec, nil
}

type RunRow struct {
	ID        int
	TraceID   string
	Source    string
	Timings   map[string]float64
	Counts    map[string]int
	CreatedAt string
}

func (d *DB) InsertRun(traceID, source string, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, source, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, source, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) ListRuns(limit int) ([]RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, source, timingsJson, countsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		var timingsJSON, countsJSON string
		if err := rows.Scan(&row.ID, &row.TraceID, &row.Source, &timingsJSON, &countsJSON, &row.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(timingsJSON), &row.Timings)
		_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

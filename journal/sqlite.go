package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Timestamps are stored as text carrying their UTC offset, so ordering and
// range filters go through julianday to compare instants.
const selectRecords = `
	SELECT id, "timestamp", name, kind, direction, quantity, price, link
	FROM trade_records`

// SQLite is a Store backed by a single SQLite connection.
type SQLite struct {
	mu   sync.Mutex
	db   *sql.DB
	now  func() time.Time
	once sync.Once
	cerr error
}

// NewSQLite opens (creating if needed) the database at path and applies
// the schema.
func NewSQLite(path string, opts ...Option) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One connection per store: inserts and scans never interleave.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA synchronous = FULL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db, now: Clock(opts...)}, nil
}

func (j *SQLite) Insert(ctx context.Context, e Entry) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rec := newRecord(0, j.now(), e)
	res, err := j.db.ExecContext(ctx, `
		INSERT INTO trade_records
		("timestamp", name, kind, direction, quantity, price, link)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.Name, int64(rec.Kind), int64(rec.Direction),
		rec.Quantity.String(), rec.Price.String(), rec.Link,
	)
	if err != nil {
		return 0, storageErr("insert trade record", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("read inserted id", err)
	}
	return id, nil
}

func (j *SQLite) ScanAll(ctx context.Context) ([]TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx, selectRecords+`
		ORDER BY julianday("timestamp") ASC, id ASC`)
	if err != nil {
		return nil, storageErr("scan trade records", err)
	}
	return collect(rows)
}

// Close releases the connection. Later calls return the first result.
func (j *SQLite) Close() error {
	j.once.Do(func() {
		j.cerr = j.db.Close()
	})
	return j.cerr
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (TradeRecord, error) {
	var (
		rec        TradeRecord
		kind, dir  int64
		qty, price string
	)
	if err := s.Scan(&rec.ID, &rec.Timestamp, &rec.Name, &kind, &dir, &qty, &price, &rec.Link); err != nil {
		return TradeRecord{}, err
	}
	rec.Kind = Kind(kind)
	rec.Direction = Direction(dir)

	var err error
	if rec.Quantity, err = decimal.NewFromString(qty); err != nil {
		return TradeRecord{}, fmt.Errorf("record %d quantity: %w", rec.ID, err)
	}
	if rec.Price, err = decimal.NewFromString(price); err != nil {
		return TradeRecord{}, fmt.Errorf("record %d price: %w", rec.ID, err)
	}
	return rec, nil
}

func collect(rows *sql.Rows) ([]TradeRecord, error) {
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, storageErr("scan trade record", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("scan trade records", err)
	}
	return out, nil
}

var (
	_ Store   = (*SQLite)(nil)
	_ Querier = (*SQLite)(nil)
)

package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradeledger/journal"
)

const selectRecords = `
	SELECT id, "timestamp", name, kind, direction, quantity::text, price::text, link
	FROM trade_records`

// Store implements journal.Store using PostgreSQL.
type Store struct {
	mu   sync.Mutex
	pool *Pool
	now  func() time.Time
	once sync.Once
}

// Open connects to dsn, applies migrations and returns a Store that owns the pool.
func Open(ctx context.Context, dsn string, opts ...journal.Option) (*Store, error) {
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool, opts...), nil
}

// New creates a Store on an existing pool. Close releases the pool.
func New(pool *Pool, opts ...journal.Option) *Store {
	return &Store{pool: pool, now: journal.Clock(opts...)}
}

// Compile-time interface checks.
var (
	_ journal.Store   = (*Store)(nil)
	_ journal.Querier = (*Store)(nil)
)

func (s *Store) Insert(ctx context.Context, e journal.Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link := e.Link
	if link == "" {
		link = journal.NoLink
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO trade_records ("timestamp", name, kind, direction, quantity, price, link)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7)
		RETURNING id`,
		s.now(), e.Name, int16(e.Kind), int16(e.Direction),
		e.Quantity.String(), e.Price.String(), link,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert trade record: %w", journal.ErrStorage, err)
	}
	return id, nil
}

func (s *Store) ScanAll(ctx context.Context) ([]journal.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.pool.Query(ctx, selectRecords+`
		ORDER BY "timestamp" ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: scan trade records: %w", journal.ErrStorage, err)
	}
	return collect(rows)
}

// Get retrieves a record by its ID. Returns journal.ErrNotFound if not exists.
func (s *Store) Get(ctx context.Context, id int64) (journal.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := scanRecord(s.pool.QueryRow(ctx, selectRecords+`
		WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return journal.TradeRecord{}, fmt.Errorf("trade record %d: %w", id, journal.ErrNotFound)
		}
		return journal.TradeRecord{}, fmt.Errorf("%w: get trade record: %w", journal.ErrStorage, err)
	}
	return rec, nil
}

// ListBetween returns records stamped within [start, end).
func (s *Store) ListBetween(ctx context.Context, start, end time.Time) ([]journal.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.pool.Query(ctx, selectRecords+`
		WHERE "timestamp" >= $1 AND "timestamp" < $2
		ORDER BY "timestamp" ASC, id ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: list trade records: %w", journal.ErrStorage, err)
	}
	return collect(rows)
}

// Close closes the connection pool once.
func (s *Store) Close() error {
	s.once.Do(s.pool.Close)
	return nil
}

func scanRecord(row pgx.Row) (journal.TradeRecord, error) {
	var (
		rec        journal.TradeRecord
		kind, dir  int16
		qty, price string
	)
	if err := row.Scan(&rec.ID, &rec.Timestamp, &rec.Name, &kind, &dir, &qty, &price, &rec.Link); err != nil {
		return journal.TradeRecord{}, err
	}
	rec.Kind = journal.Kind(kind)
	rec.Direction = journal.Direction(dir)

	var err error
	if rec.Quantity, err = decimal.NewFromString(qty); err != nil {
		return journal.TradeRecord{}, fmt.Errorf("record %d quantity: %w", rec.ID, err)
	}
	if rec.Price, err = decimal.NewFromString(price); err != nil {
		return journal.TradeRecord{}, fmt.Errorf("record %d price: %w", rec.ID, err)
	}
	return rec, nil
}

func collect(rows pgx.Rows) ([]journal.TradeRecord, error) {
	defer rows.Close()

	var out []journal.TradeRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan trade record: %w", journal.ErrStorage, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan trade records: %w", journal.ErrStorage, err)
	}
	return out, nil
}

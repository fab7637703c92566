package journal

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that starts at base and advances by step on every call.
func stepClock(base time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := base
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}

// seqClock returns ts in order, zones included, repeating the last one.
func seqClock(ts ...time.Time) func() time.Time {
	var mu sync.Mutex
	i := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := ts[min(i, len(ts)-1)]
		i++
		return t
	}
}

func newTestSQLite(t *testing.T, opts ...Option) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func testEntry(name string, dir Direction, qty, price string) Entry {
	return Entry{
		Name:      name,
		Kind:      Spot,
		Direction: dir,
		Quantity:  decimal.RequireFromString(qty),
		Price:     decimal.RequireFromString(price),
		Link:      NoLink,
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = 'trade_records'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "trade_records", name)
}

func TestSQLiteCreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "data", "ledger.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	assert.NoError(t, j.Close())
}

func TestSQLiteInsert(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	j, path := newTestSQLite(t, WithClock(func() time.Time { return ts }))
	ctx := context.Background()

	e := Entry{
		Name:      "BTC",
		Kind:      Contract,
		Direction: Buy,
		Quantity:  decimal.RequireFromString("0.125"),
		Price:     decimal.RequireFromString("64000.50"),
		Link:      "https://example.com/tx/1",
	}

	id, err := j.Insert(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var (
		gotID     int64
		gotTime   time.Time
		name      string
		kind, dir int64
		qty       string
		price     string
		link      string
	)
	err = db.QueryRow(`
        SELECT id, "timestamp", name, kind, direction, quantity, price, link
        FROM trade_records LIMIT 1`).Scan(
		&gotID, &gotTime, &name, &kind, &dir, &qty, &price, &link,
	)
	require.NoError(t, err)

	assert.Equal(t, id, gotID)
	assert.True(t, gotTime.Equal(ts))
	assert.Equal(t, "BTC", name)
	assert.Equal(t, int64(1), kind)
	assert.Equal(t, int64(1), dir)
	assert.Equal(t, "0.125", qty)
	assert.Equal(t, "64000.5", price)
	assert.Equal(t, "https://example.com/tx/1", link)
}

func TestSQLiteInsertDefaultsLink(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	e := testEntry("ETH", Sell, "1", "2")
	e.Link = ""
	id, err := j.Insert(ctx, e)
	require.NoError(t, err)

	rec, err := j.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, NoLink, rec.Link)
}

func TestSQLiteIDsAreMonotonic(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		id, err := j.Insert(ctx, testEntry("A", Buy, "1", "1"))
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}
}

func TestSQLiteScanAllOrdersByTimestamp(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	stamps := []time.Time{base.Add(2 * time.Hour), base, base.Add(time.Hour)}
	i := 0
	j, _ := newTestSQLite(t, WithClock(func() time.Time {
		ts := stamps[i]
		i++
		return ts
	}))
	ctx := context.Background()

	for _, name := range []string{"late", "early", "middle"} {
		_, err := j.Insert(ctx, testEntry(name, Buy, "1", "1"))
		require.NoError(t, err)
	}

	recs, err := j.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "early", recs[0].Name)
	assert.Equal(t, "middle", recs[1].Name)
	assert.Equal(t, "late", recs[2].Name)
}

func TestSQLiteScanAllEmpty(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	recs, err := j.ScanAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLiteRoundTripsDecimals(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	e := testEntry("SOL", Buy, "0.1", "0.2")
	_, err := j.Insert(ctx, e)
	require.NoError(t, err)

	recs, err := j.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Quantity.Equal(e.Quantity))
	assert.True(t, recs[0].Price.Equal(e.Price))
	assert.Equal(t, "0.02", recs[0].Value().String())
}

func TestSQLiteKeepsStoredZone(t *testing.T) {
	t.Parallel()

	zone := time.FixedZone("UTC+8", 8*3600)
	ts := time.Date(2024, 3, 1, 1, 30, 0, 0, zone) // still Feb 29 in UTC
	j, _ := newTestSQLite(t, WithClock(func() time.Time { return ts }))
	ctx := context.Background()

	_, err := j.Insert(ctx, testEntry("A", Buy, "1", "1"))
	require.NoError(t, err)

	recs, err := j.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Timestamp.Equal(ts))
	assert.Equal(t, 1, recs[0].Timestamp.Day())
}

func TestSQLiteScanAllOrdersByInstantAcrossOffsets(t *testing.T) {
	t.Parallel()

	edt := time.FixedZone("EDT", -4*3600)
	est := time.FixedZone("EST", -5*3600)
	cst := time.FixedZone("UTC+8", 8*3600)

	tests := []struct {
		name          string
		first, second time.Time
	}{
		{
			name:   "dst fall back",
			first:  time.Date(2026, 11, 1, 1, 30, 0, 0, edt),
			second: time.Date(2026, 11, 1, 1, 10, 0, 0, est),
		},
		{
			name:   "host zone change",
			first:  time.Date(2026, 3, 1, 9, 0, 0, 0, cst),
			second: time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.True(t, tt.first.Before(tt.second))
			j, _ := newTestSQLite(t, WithClock(seqClock(tt.first, tt.second)))
			ctx := context.Background()

			_, err := j.Insert(ctx, testEntry("first", Buy, "1", "1"))
			require.NoError(t, err)
			_, err = j.Insert(ctx, testEntry("second", Buy, "1", "1"))
			require.NoError(t, err)

			recs, err := j.ScanAll(ctx)
			require.NoError(t, err)
			require.Len(t, recs, 2)
			assert.Equal(t, "first", recs[0].Name)
			assert.Equal(t, "second", recs[1].Name)
			assert.True(t, recs[0].Timestamp.Equal(tt.first))
			_, off := recs[0].Timestamp.Zone()
			_, want := tt.first.Zone()
			assert.Equal(t, want, off)
		})
	}
}

func TestSQLiteCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	assert.NoError(t, j.Close())
	assert.NoError(t, j.Close())
}

func TestSQLiteInsertAfterCloseIsStorageFailure(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	require.NoError(t, j.Close())

	_, err := j.Insert(context.Background(), testEntry("A", Buy, "1", "1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStorage))
}

func TestSQLiteConcurrentInserts(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 5; k++ {
				_, err := j.Insert(ctx, testEntry("A", Buy, "1", "1"))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	recs, err := j.ScanAll(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 40)
}

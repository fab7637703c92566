package ledger

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradeledger/chart"
	"github.com/rustyeddy/tradeledger/entry"
	"github.com/rustyeddy/tradeledger/journal"
)

const snake = "🐍"

// seqClock returns the given times in order, repeating the last one.
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

// failingStore accepts the first ok inserts and fails the rest.
type failingStore struct {
	*journal.Memory
	ok int
	n  int
}

func (f *failingStore) Insert(ctx context.Context, e journal.Entry) (int64, error) {
	f.n++
	if f.n > f.ok {
		return 0, fmt.Errorf("%w: insert: disk full", journal.ErrStorage)
	}
	return f.Memory.Insert(ctx, e)
}

func newLedger(t *testing.T, opts ...Option) (*Ledger, *journal.Memory) {
	t.Helper()
	store := journal.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	return New(store, opts...), store
}

func TestHandleRecordsAndReplies(t *testing.T) {
	l, store := newLedger(t)

	out, err := l.Handle(context.Background(), snake+" A,0,1,10,5", snake)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.NotEmpty(t, out.RequestID)
	assert.Equal(t, 1, out.Added)
	assert.Empty(t, out.Warnings)
	require.NotNil(t, out.Stats)
	assert.Equal(t, 1, out.Stats.RowCount)
	assert.Equal(t, "50", out.Stats.Total.String())
	assert.Empty(t, out.ChartPath, "charts disabled")

	reply := out.Reply()
	assert.Contains(t, reply, "- rows: 1")
	assert.Contains(t, reply, "- total: 50.00")
	assert.Contains(t, reply, "- buy total: 50.00")
	assert.Contains(t, reply, "- sell total: 0.00")
	assert.Contains(t, reply, "- profit/loss: -50.00")

	recs, err := store.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, journal.NoLink, recs[0].Link)
}

func TestHandleReportsSkippedWindows(t *testing.T) {
	l, _ := newLedger(t)

	out, err := l.Handle(context.Background(), snake+" A,2,1,1,1,-,B,0,1,2,3", snake)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Added)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "invalid enum value")

	reply := out.Reply()
	assert.True(t, len(reply) > len(out.Warnings[0]))
	assert.Equal(t, out.Warnings[0], reply[:len(out.Warnings[0])])
	assert.Contains(t, reply, "- rows: 1")
}

func TestHandleInsufficientFields(t *testing.T) {
	l, store := newLedger(t)

	out, err := l.Handle(context.Background(), snake+" A,0,1,10", snake)
	require.ErrorIs(t, err, entry.ErrInsufficientFields)
	require.NotNil(t, out)
	assert.Nil(t, out.Stats)
	assert.Equal(t, replyBadForm, out.Reply())

	recs, err := store.ScanAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestHandleNothingValid(t *testing.T) {
	l, _ := newLedger(t)

	out, err := l.Handle(context.Background(), snake+" A,5,1,1,1", snake)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Added)
	assert.Nil(t, out.Stats)
	assert.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Reply(), replyNoData)
}

func TestHandleStorageFailureKeepsEarlierInserts(t *testing.T) {
	store := &failingStore{Memory: journal.NewMemory(), ok: 1}
	l := New(store, WithLogger(zap.NewNop()))

	out, err := l.Handle(context.Background(), snake+" A,0,1,1,1,-,B,0,1,2,2,-,C,0,1,3,3", snake)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Added)
	assert.ErrorIs(t, out.StoreErr, journal.ErrStorage)
	assert.Equal(t, 2, store.n, "no inserts after the first failure")

	require.NotNil(t, out.Stats)
	assert.Equal(t, 1, out.Stats.RowCount)
	assert.Contains(t, out.Reply(), "storage failed")
	assert.Contains(t, out.StoreError(), "disk full")
}

func TestHandleStorageFailureOnFirstInsert(t *testing.T) {
	store := &failingStore{Memory: journal.NewMemory(), ok: 0}
	l := New(store)

	out, err := l.Handle(context.Background(), snake+" A,0,1,1,1", snake)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Added)
	require.NotNil(t, out.Stats)
	assert.Equal(t, 0, out.Stats.RowCount)
	assert.Contains(t, out.Reply(), "storage failed")
}

func TestHandleWritesChart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "picture")
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	l, _ := newLedger(t,
		WithCharts(chart.NewBuilder(dir, "", chart.Fallback)),
		WithClock(func() time.Time { return now }),
	)

	out, err := l.Handle(context.Background(), snake+" A,0,1,2,3 ", snake)
	require.NoError(t, err)
	assert.NoError(t, out.ChartErr)
	assert.Equal(t, filepath.Join(dir, "ledger_pivot_2024-03-05.png"), out.ChartPath)
	_, err = os.Stat(out.ChartPath)
	assert.NoError(t, err)
}

func TestHandleChartFailureStillReturnsStats(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	l, _ := newLedger(t, WithCharts(chart.NewBuilder(filepath.Join(blocker, "picture"), "", chart.Fallback)))

	out, err := l.Handle(context.Background(), snake+" A,0,1,2,3", snake)
	require.NoError(t, err)
	require.NotNil(t, out.Stats)
	assert.Error(t, out.ChartErr)
	assert.Empty(t, out.ChartPath)
	assert.Contains(t, out.Reply(), "chart failed")
}

func TestSnapshotDailyPivot(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	store := journal.NewMemory(journal.WithClock(seqClock(day1, day1, day2)))
	l := New(store)
	ctx := context.Background()

	_, err := l.Handle(ctx, snake+" X,0,1,2,3,-,X,0,0,1,3", snake)
	require.NoError(t, err)
	_, err = l.Handle(ctx, snake+" Y,1,1,1,1", snake)
	require.NoError(t, err)

	snap, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Records, 3)
	require.Len(t, snap.Pivot, 2)
	assert.Equal(t, "6", snap.Pivot[0].Buy.String())
	assert.Equal(t, "3", snap.Pivot[0].Sell.String())
	assert.Equal(t, "3", snap.Pivot[0].Cumulative.String())
	assert.Equal(t, "1", snap.Pivot[1].Net.String())
	assert.Equal(t, "4", snap.Pivot[1].Cumulative.String())
}

func TestSnapshotEmptyStore(t *testing.T) {
	l, _ := newLedger(t)
	snap, err := l.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Stats.RowCount)
	assert.True(t, snap.Stats.Total.IsZero())
	assert.Empty(t, snap.Pivot)

	_, err = chart.Render(snap.Pivot, chart.Fallback.Labels())
	assert.ErrorIs(t, err, chart.ErrNoChart)
}

func TestHandleConcurrent(t *testing.T) {
	l, _ := newLedger(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.Handle(context.Background(), fmt.Sprintf("%s N%d,0,1,1,%d", snake, i, i+1), snake)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	snap, err := l.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, snap.Stats.RowCount)
	// 1 + 2 + ... + 20
	assert.Equal(t, "210", snap.Stats.Total.String())
}

func TestHandleRequestIDsAreUnique(t *testing.T) {
	l, _ := newLedger(t)
	a, _ := l.Handle(context.Background(), snake+" A,0,1,1,1", snake)
	b, _ := l.Handle(context.Background(), snake+" A,0,1,1,1", snake)
	assert.NotEqual(t, a.RequestID, b.RequestID)
}

func TestTriggersMatch(t *testing.T) {
	tr := Triggers{"$$", "$", snake}

	sym, ok := tr.Match("$$ A,0,1,1,1")
	assert.True(t, ok)
	assert.Equal(t, "$$", sym)

	sym, ok = tr.Match(snake + "A,0,1,1,1")
	assert.True(t, ok)
	assert.Equal(t, snake, sym)

	_, ok = tr.Match("hello")
	assert.False(t, ok)

	_, ok = Triggers{""}.Match("anything")
	assert.False(t, ok)
}

func TestReport(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	store := journal.NewMemory(journal.WithClock(seqClock(day1, day1, day2)))
	dir := t.TempDir()
	l := New(store,
		WithCharts(chart.NewBuilder(dir, "", chart.Fallback)),
		WithClock(func() time.Time { return day2 }),
	)
	ctx := context.Background()
	_, err := l.Handle(ctx, snake+" X,0,1,2,3,-,X,0,0,1,3,-,Y,1,1,1,1", snake)
	require.NoError(t, err)

	r, err := l.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ledger_pivot_2024-03-02.png"), r.ChartPNG)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, r))
	org := buf.String()
	assert.Contains(t, org, "* LEDGER: 2024-03-02")
	assert.Contains(t, org, ":ROWS:        3")
	assert.Contains(t, org, "| 2024-03-01 | 6.00 | 3.00 | 3.00 | 3.00 |")
	assert.Contains(t, org, "| 2024-03-02 | 1.00 | 0.00 | 1.00 | 4.00 |")
	assert.Contains(t, org, "[[file:"+r.ChartPNG+"]]")
	assert.NotContains(t, org, "** Notes")
}

func TestReportAndHandleShareChartFile(t *testing.T) {
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store := journal.NewMemory(journal.WithClock(func() time.Time { return day }))
	dir := t.TempDir()
	l := New(store,
		WithLogger(zap.NewNop()),
		WithCharts(chart.NewBuilder(dir, "", chart.Fallback)),
		WithClock(func() time.Time { return day }),
	)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := l.Handle(ctx, fmt.Sprintf("%s N%d,0,1,1,%d", snake, i, i+1), snake)
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_, err := l.Report(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	r, err := l.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, r.Stats.RowCount)

	f, err := os.Open(r.ChartPNG)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestReportEmpty(t *testing.T) {
	l, _ := newLedger(t, WithCharts(chart.NewBuilder(t.TempDir(), "", chart.Fallback)))
	r, err := l.Report(context.Background())
	require.NoError(t, err)
	assert.Empty(t, r.ChartPNG)

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, r))
	assert.Contains(t, buf.String(), "# no chart generated")
	assert.Contains(t, buf.String(), "- no trades recorded yet")
}

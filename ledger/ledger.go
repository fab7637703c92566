// Package ledger runs one chat message through the whole bookkeeping
// cycle: parse, append to the store, recompute stats and redraw the chart.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradeledger/chart"
	"github.com/rustyeddy/tradeledger/entry"
	"github.com/rustyeddy/tradeledger/journal"
	"github.com/rustyeddy/tradeledger/pkg/id"
	"github.com/rustyeddy/tradeledger/stats"
)

// Ledger serialises message handling over a single store.
type Ledger struct {
	mu     sync.Mutex
	store  journal.Store
	charts *chart.Builder
	log    *zap.Logger
	now    func() time.Time
	ids    *id.Generator
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithCharts enables chart rendering after each accepted message.
func WithCharts(b *chart.Builder) Option {
	return func(l *Ledger) { l.charts = b }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithClock sets the clock used to name chart files.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New returns a ledger over store. Without WithCharts no chart is drawn.
func New(store journal.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.ids = id.NewGenerator(l.now)
	return l
}

// Store returns the underlying record store.
func (l *Ledger) Store() journal.Store { return l.store }

// Charts returns the chart builder, or nil when charts are disabled.
func (l *Ledger) Charts() *chart.Builder { return l.charts }

// Handle processes one triggered message. The returned Outcome is never
// nil. The error is non-nil only when the message is too short to hold a
// trade (entry.ErrInsufficientFields) or the store cannot be read back;
// per-window problems, insert failures and render failures are reported
// in the Outcome.
func (l *Ledger) Handle(ctx context.Context, text, trigger string) (*Outcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := &Outcome{RequestID: l.ids.Next()}
	log := l.log.With(zap.String("request_id", out.RequestID))

	res, err := entry.Parse(text, trigger)
	if err != nil {
		out.ParseErr = err
		log.Info("message rejected", zap.Error(err))
		return out, err
	}
	out.Warnings = res.Messages()

	for _, e := range res.Entries {
		if _, err := l.store.Insert(ctx, e); err != nil {
			out.StoreErr = err
			log.Error("insert failed", zap.Int("added", out.Added), zap.Error(err))
			break
		}
		out.Added++
	}

	log.Info("message parsed",
		zap.Int("entries", len(res.Entries)),
		zap.Int("added", out.Added),
		zap.Int("warnings", len(out.Warnings)),
	)

	if out.Added == 0 && out.StoreErr == nil {
		return out, nil
	}

	snap, err := l.snapshot(ctx)
	if err != nil {
		log.Error("scan failed", zap.Error(err))
		return out, err
	}
	out.Stats = &snap.Stats

	if l.charts != nil {
		path, err := l.charts.WriteFile(snap.Pivot, l.now())
		switch {
		case errors.Is(err, chart.ErrNoChart):
		case err != nil:
			out.ChartErr = err
			log.Error("chart failed", zap.Error(err))
		default:
			out.ChartPath = path
		}
	}
	return out, nil
}

// Snapshot is the store's content reduced to stats and a daily pivot.
type Snapshot struct {
	Records []journal.TradeRecord
	Stats   stats.Stats
	Pivot   []stats.DailyAggregate
}

// Snapshot reads every record and aggregates it.
func (l *Ledger) Snapshot(ctx context.Context) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot(ctx)
}

func (l *Ledger) snapshot(ctx context.Context) (Snapshot, error) {
	recs, err := l.store.ScanAll(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan records: %w", err)
	}
	return Snapshot{
		Records: recs,
		Stats:   stats.Summarize(recs),
		Pivot:   stats.DailyPivot(recs),
	}, nil
}

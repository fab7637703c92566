package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradeledger/chart"
	"github.com/rustyeddy/tradeledger/config"
	"github.com/rustyeddy/tradeledger/internal/logger"
	"github.com/rustyeddy/tradeledger/journal"
	"github.com/rustyeddy/tradeledger/journal/postgres"
	"github.com/rustyeddy/tradeledger/ledger"
)

// app is everything a command needs, built from the loaded config.
type app struct {
	log    *zap.Logger
	store  journal.Store
	ledger *ledger.Ledger
	labels chart.LabelSet
}

func openStore(ctx context.Context, c config.StoreConfig) (journal.Store, error) {
	switch c.Type {
	case "memory":
		return journal.NewMemory(), nil
	case "postgres":
		return postgres.Open(ctx, c.DSN)
	default:
		return journal.NewSQLite(c.Path)
	}
}

func newApp(ctx context.Context, c *config.Config) (*app, error) {
	log, err := logger.New(c.Log)
	if err != nil {
		return nil, err
	}

	want, err := chart.ParseLabelSet(c.Chart.Labels)
	if err != nil {
		return nil, err
	}
	labels, ferr := chart.Setup(c.Chart.Font, want)
	if ferr != nil && want == chart.Localized {
		log.Warn("using fallback chart labels", zap.Error(ferr))
	}

	store, err := openStore(ctx, c.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.Store.Type, err)
	}
	log.Debug("store opened", zap.String("type", c.Store.Type))

	l := ledger.New(store,
		ledger.WithLogger(log),
		ledger.WithCharts(chart.NewBuilder(c.Chart.Dir, c.Chart.Prefix, labels)),
		ledger.WithClock(time.Now),
	)
	return &app{log: log, store: store, ledger: l, labels: labels}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error("close store", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) querier() (journal.Querier, error) {
	q, ok := a.store.(journal.Querier)
	if !ok {
		return nil, fmt.Errorf("store does not support queries")
	}
	return q, nil
}

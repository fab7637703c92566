// journal/journal.go
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// NoLink is stored when a trade entry carries no transaction link.
const NoLink = "-"

// ErrStorage wraps every failure of the underlying persistence layer.
var ErrStorage = errors.New("storage failure")

var errClosed = errors.New("store is closed")

// Kind is the instrument class of a trade.
type Kind int

const (
	Spot     Kind = 0
	Contract Kind = 1
)

func (k Kind) Valid() bool { return k == Spot || k == Contract }

func (k Kind) String() string {
	switch k {
	case Spot:
		return "spot"
	case Contract:
		return "contract"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Direction is the side of a trade.
type Direction int

const (
	Sell Direction = 0
	Buy  Direction = 1
)

func (d Direction) Valid() bool { return d == Sell || d == Buy }

func (d Direction) String() string {
	switch d {
	case Sell:
		return "sell"
	case Buy:
		return "buy"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Entry is a validated trade waiting to be stored. The store assigns
// the ID and timestamp.
type Entry struct {
	Name      string
	Kind      Kind
	Direction Direction
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Link      string
}

// TradeRecord is an immutable stored trade.
type TradeRecord struct {
	ID        int64           `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Name      string          `json:"name"`
	Kind      Kind            `json:"kind"`
	Direction Direction       `json:"direction"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Link      string          `json:"link"`
}

// Value is quantity times price.
func (r TradeRecord) Value() decimal.Decimal {
	return r.Quantity.Mul(r.Price)
}

func newRecord(id int64, ts time.Time, e Entry) TradeRecord {
	link := e.Link
	if link == "" {
		link = NoLink
	}
	return TradeRecord{
		ID:        id,
		Timestamp: ts,
		Name:      e.Name,
		Kind:      e.Kind,
		Direction: e.Direction,
		Quantity:  e.Quantity,
		Price:     e.Price,
		Link:      link,
	}
}

// Store is an append-only collection of trade records. Insert and
// ScanAll are safe for concurrent use; Close releases the underlying
// connection and may be called more than once.
type Store interface {
	Insert(ctx context.Context, e Entry) (int64, error)
	ScanAll(ctx context.Context) ([]TradeRecord, error)
	Close() error
}

// Querier is implemented by stores that can look up single records and
// time ranges without a full scan.
type Querier interface {
	Get(ctx context.Context, id int64) (TradeRecord, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]TradeRecord, error)
}

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("not found")

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces the wall clock used to stamp inserted records.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Clock resolves the clock from a list of options.
func Clock(opts ...Option) func() time.Time {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o.now
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

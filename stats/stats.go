// Package stats reduces trade records to ledger totals and a per-day pivot.
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradeledger/journal"
)

// DayLayout is the calendar key used for pivot rows.
const DayLayout = "2006-01-02"

// Stats summarises every record in the store.
type Stats struct {
	RowCount   int             `json:"row_count"`
	Total      decimal.Decimal `json:"total"`
	BuyTotal   decimal.Decimal `json:"buy_total"`
	SellTotal  decimal.Decimal `json:"sell_total"`
	ProfitLoss decimal.Decimal `json:"profit_loss"`
}

// DailyAggregate is one row of the daily pivot.
type DailyAggregate struct {
	Day        time.Time       `json:"day"`
	Buy        decimal.Decimal `json:"buy"`
	Sell       decimal.Decimal `json:"sell"`
	Net        decimal.Decimal `json:"net"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// Key returns the day formatted as YYYY-MM-DD.
func (d DailyAggregate) Key() string { return d.Day.Format(DayLayout) }

// Summarize computes totals over records. ProfitLoss is sell minus buy.
func Summarize(records []journal.TradeRecord) Stats {
	s := Stats{
		RowCount:  len(records),
		Total:     decimal.Zero,
		BuyTotal:  decimal.Zero,
		SellTotal: decimal.Zero,
	}
	for _, r := range records {
		v := r.Value()
		s.Total = s.Total.Add(v)
		switch r.Direction {
		case journal.Buy:
			s.BuyTotal = s.BuyTotal.Add(v)
		case journal.Sell:
			s.SellTotal = s.SellTotal.Add(v)
		}
	}
	s.ProfitLoss = s.SellTotal.Sub(s.BuyTotal)
	return s
}

// DailyPivot groups records by the calendar date of their timestamp, in the
// zone the timestamp carries, and returns one row per day in ascending
// order. Net is buy minus sell; Cumulative is the running sum of Net.
func DailyPivot(records []journal.TradeRecord) []DailyAggregate {
	if len(records) == 0 {
		return nil
	}

	byDay := make(map[string]*DailyAggregate)
	for _, r := range records {
		y, m, d := r.Timestamp.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, r.Timestamp.Location())
		key := day.Format(DayLayout)

		agg, ok := byDay[key]
		if !ok {
			agg = &DailyAggregate{Day: day, Buy: decimal.Zero, Sell: decimal.Zero}
			byDay[key] = agg
		}
		switch r.Direction {
		case journal.Buy:
			agg.Buy = agg.Buy.Add(r.Value())
		case journal.Sell:
			agg.Sell = agg.Sell.Add(r.Value())
		}
	}

	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]DailyAggregate, 0, len(keys))
	cum := decimal.Zero
	for _, k := range keys {
		agg := *byDay[k]
		agg.Net = agg.Buy.Sub(agg.Sell)
		cum = cum.Add(agg.Net)
		agg.Cumulative = cum
		out = append(out, agg)
	}
	return out
}

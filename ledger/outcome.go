package ledger

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tradeledger/stats"
)

const (
	replyNoData  = "no valid data was added"
	replyBadForm = "invalid message format: a trade needs at least name, kind, direction, quantity and price"
)

// Outcome is the result of handling one message.
type Outcome struct {
	RequestID string       `json:"request_id"`
	Added     int          `json:"added"`
	Warnings  []string     `json:"warnings,omitempty"`
	Stats     *stats.Stats `json:"stats,omitempty"`
	ChartPath string       `json:"chart_path,omitempty"`

	ParseErr error `json:"-"`
	ChartErr error `json:"-"`
	StoreErr error `json:"-"`
}

// Reply renders the chat answer: skipped-window warnings first, then
// either the running totals or a note that nothing was added.
func (o *Outcome) Reply() string {
	if o.ParseErr != nil {
		return replyBadForm
	}

	var b strings.Builder
	for _, w := range o.Warnings {
		b.WriteString(w)
		b.WriteByte('\n')
	}

	if o.Stats == nil {
		b.WriteString(replyNoData)
		if o.StoreErr != nil {
			fmt.Fprintf(&b, "\n(storage failed: %v)", o.StoreErr)
		}
		return b.String()
	}

	s := o.Stats
	fmt.Fprintf(&b, "✅ %d record(s) written\n", o.Added)
	b.WriteString("stats:\n")
	fmt.Fprintf(&b, "- rows: %d\n", s.RowCount)
	fmt.Fprintf(&b, "- total: %s\n", s.Total.StringFixed(2))
	fmt.Fprintf(&b, "- buy total: %s\n", s.BuyTotal.StringFixed(2))
	fmt.Fprintf(&b, "- sell total: %s\n", s.SellTotal.StringFixed(2))
	fmt.Fprintf(&b, "- profit/loss: %s", s.ProfitLoss.StringFixed(2))
	if o.StoreErr != nil {
		fmt.Fprintf(&b, "\n(storage failed, later trades not written: %v)", o.StoreErr)
	}
	if o.ChartErr != nil {
		fmt.Fprintf(&b, "\n(chart failed: %v)", o.ChartErr)
	}
	return b.String()
}

// ChartError and StoreError expose the failures as strings for JSON hosts.
func (o *Outcome) ChartError() string { return errString(o.ChartErr) }

func (o *Outcome) StoreError() string { return errString(o.StoreErr) }

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

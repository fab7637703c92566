package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradeledger/chart"
	"github.com/rustyeddy/tradeledger/stats"
)

// Report is an Org document summarising the ledger.
type Report struct {
	Created  time.Time
	Stats    stats.Stats
	Pivot    []stats.DailyAggregate
	ChartPNG string

	Notes []string
}

var reportFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(ReportOrgTemplate))

// WriteReport renders r as Org text.
func WriteReport(w io.Writer, r Report) error {
	if err := reportTmpl.Execute(w, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// Report aggregates the store and, when charts are enabled, writes the
// chart the report links to. The chart is written under the same lock as
// Handle since both target the same dated file.
func (l *Ledger) Report(ctx context.Context) (Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.snapshot(ctx)
	if err != nil {
		return Report{}, err
	}

	r := Report{
		Created: l.now(),
		Stats:   snap.Stats,
		Pivot:   snap.Pivot,
	}
	if l.charts != nil {
		path, err := l.charts.WriteFile(snap.Pivot, r.Created)
		switch {
		case err == nil:
			r.ChartPNG = path
		case !errors.Is(err, chart.ErrNoChart):
			r.Notes = append(r.Notes, fmt.Sprintf("chart failed: %v", err))
		}
	}
	if snap.Stats.RowCount == 0 {
		r.Notes = append(r.Notes, "no trades recorded yet")
	}
	return r, nil
}

const ReportOrgTemplate = `* LEDGER: {{(orTime .Created).Format "2006-01-02"}}
:PROPERTIES:
:ROWS:        {{.Stats.RowCount}}
:TOTAL:       {{money .Stats.Total}}
:BUY_TOTAL:   {{money .Stats.BuyTotal}}
:SELL_TOTAL:  {{money .Stats.SellTotal}}
:PROFIT_LOSS: {{money .Stats.ProfitLoss}}
:DAYS:        {{len .Pivot}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Summary
- Rows:         *{{.Stats.RowCount}}*
- Total:        *{{money .Stats.Total}}*
- Buy total:    *{{money .Stats.BuyTotal}}*
- Sell total:   *{{money .Stats.SellTotal}}*
- Profit/loss:  *{{money .Stats.ProfitLoss}}*

** Daily Pivot
| Day        | Buy | Sell | Net | Cumulative |
|------------+-----+------+-----+------------|
{{- range .Pivot }}
| {{.Key}} | {{money .Buy}} | {{money .Sell}} | {{money .Net}} | {{money .Cumulative}} |
{{- end }}

** Chart
{{- if .ChartPNG }}
[[file:{{.ChartPNG}}]]
{{- else }}
# no chart generated
{{- end }}

{{- if .Notes }}

** Notes
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`

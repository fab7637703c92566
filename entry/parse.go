// Package entry turns free-text trade messages into journal entries.
//
// A message is a trigger prefix followed by one or more trades. Each trade
// is six fields: name, kind (0 spot, 1 contract), direction (0 sell,
// 1 buy), quantity, price and an optional link. Fields may be separated by
// commas, full-width commas, slashes or spaces, in any mix:
//
//	🐍 BTC,1,1,0.5,64000,https://x/tx/1 ETH/0/0/2/3100
package entry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradeledger/journal"
)

const (
	// WindowSize is the number of tokens describing one trade.
	WindowSize = 6
	// MinFields is the number of tokens a trade needs without its link.
	MinFields = 5
)

// delimiters are folded into ',' before splitting.
var delimiters = strings.NewReplacer("，", ",", "/", ",", " ", ",")

// Result holds the entries built from one message and the reasons any
// windows were skipped, in window order.
type Result struct {
	Entries  []journal.Entry
	Warnings []Warning
}

// Messages returns the warnings as human-readable strings.
func (r Result) Messages() []string {
	if len(r.Warnings) == 0 {
		return nil
	}
	out := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		out[i] = w.String()
	}
	return out
}

// Tokenize strips trigger from the front of raw and splits the rest into
// non-empty, trimmed tokens.
func Tokenize(raw, trigger string) []string {
	data := strings.TrimSpace(strings.TrimPrefix(raw, trigger))
	data = delimiters.Replace(data)

	var tokens []string
	for _, part := range strings.Split(data, ",") {
		if p := strings.TrimSpace(part); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// Parse tokenizes raw and builds one entry per six-token window. The
// window start always advances by six; a trailing window of five tokens
// is read without a link and one of fewer than five is ignored.
//
// Only ErrInsufficientFields is returned as an error. Bad windows are
// skipped and reported in Result.Warnings.
func Parse(raw, trigger string) (Result, error) {
	tokens := Tokenize(raw, trigger)
	if len(tokens) < MinFields {
		return Result{}, fmt.Errorf("%w: got %d", ErrInsufficientFields, len(tokens))
	}

	var res Result
	for i, w := 0, 0; i < len(tokens); i, w = i+WindowSize, w+1 {
		if i+MinFields > len(tokens) {
			continue
		}
		window := tokens[i:min(i+WindowSize, len(tokens))]

		e, err := parseWindow(window)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{Window: w, Tokens: window, Err: err})
			continue
		}
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func parseWindow(window []string) (e journal.Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing [%s] failed: %v; skipped", strings.Join(window, ", "), r)
		}
	}()

	kind, err := parseFlag(window, 1, "kind", "0 (spot) or 1 (contract)")
	if err != nil {
		return e, err
	}
	dir, err := parseFlag(window, 2, "direction", "0 (sell) or 1 (buy)")
	if err != nil {
		return e, err
	}
	qty, err := parseAmount(window, 3)
	if err != nil {
		return e, err
	}
	price, err := parseAmount(window, 4)
	if err != nil {
		return e, err
	}

	link := journal.NoLink
	if len(window) > 5 && strings.TrimSpace(window[5]) != "" {
		link = window[5]
	}

	return journal.Entry{
		Name:      window[0],
		Kind:      journal.Kind(kind),
		Direction: journal.Direction(dir),
		Quantity:  qty,
		Price:     price,
		Link:      link,
	}, nil
}

func parseFlag(window []string, idx int, field, allowed string) (int, error) {
	v, err := strconv.Atoi(window[idx])
	if err != nil {
		return 0, numericError(window, err)
	}
	if v != 0 && v != 1 {
		return 0, enumError(field, window[idx], allowed)
	}
	return v, nil
}

func parseAmount(window []string, idx int) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(window[idx])
	if err != nil {
		return decimal.Decimal{}, numericError(window, err)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, numericError(window, fmt.Errorf("negative amount %q", window[idx]))
	}
	return d, nil
}

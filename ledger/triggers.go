package ledger

import "strings"

// Triggers is the ordered list of message prefixes that start a request.
type Triggers []string

// Match returns the first trigger msg starts with.
func (t Triggers) Match(msg string) (string, bool) {
	for _, sym := range t {
		if sym != "" && strings.HasPrefix(msg, sym) {
			return sym, true
		}
	}
	return "", false
}

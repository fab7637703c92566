package entry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientFields aborts a parse whose token list is shorter
	// than one trade (name, kind, direction, quantity, price).
	ErrInsufficientFields = errors.New("insufficient fields: need at least name, kind, direction, quantity and price")

	// ErrInvalidEnumValue marks a kind or direction token outside {0, 1}.
	ErrInvalidEnumValue = errors.New("invalid enum value")

	// ErrInvalidNumericValue marks a token that does not parse as a number.
	ErrInvalidNumericValue = errors.New("invalid numeric value")
)

// Warning explains why one window was skipped.
type Warning struct {
	Window int      // zero-based window index
	Tokens []string // the window's tokens
	Err    error
}

func (w Warning) String() string { return w.Err.Error() }

func enumError(field, token, allowed string) error {
	return fmt.Errorf("%w: %s %q, want %s; skipped", ErrInvalidEnumValue, field, token, allowed)
}

func numericError(tokens []string, err error) error {
	return fmt.Errorf("%w: [%s] skipped: %w", ErrInvalidNumericValue, strings.Join(tokens, ", "), err)
}

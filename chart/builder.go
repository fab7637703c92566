package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rustyeddy/tradeledger/stats"
)

const (
	DefaultDir    = "data/picture"
	DefaultPrefix = "ledger_pivot"
)

// Builder writes rendered charts into a directory, one file per day.
type Builder struct {
	Dir    string
	Prefix string
	Set    LabelSet
}

// NewBuilder returns a builder, filling empty dir and prefix with defaults.
func NewBuilder(dir, prefix string, set LabelSet) *Builder {
	if dir == "" {
		dir = DefaultDir
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Builder{Dir: dir, Prefix: prefix, Set: set}
}

// Path is the file a chart generated at now is written to.
func (b *Builder) Path(now time.Time) string {
	name := fmt.Sprintf("%s_%s.png", b.Prefix, now.Format(stats.DayLayout))
	return filepath.Join(b.Dir, name)
}

// WriteFile renders pivot and writes it to Path(now), creating the
// directory when needed. It returns ErrNoChart for an empty pivot.
func (b *Builder) WriteFile(pivot []stats.DailyAggregate, now time.Time) (string, error) {
	png, err := Render(pivot, b.Set.Labels())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	path := b.Path(now)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	return path, nil
}

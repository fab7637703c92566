package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Get returns a single trade record by ID.
func (j *SQLite) Get(ctx context.Context, id int64) (TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	row := j.db.QueryRowContext(ctx, selectRecords+`
		WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade record %d: %w", id, ErrNotFound)
		}
		return TradeRecord{}, storageErr("get trade record", err)
	}
	return rec, nil
}

// ListBetween returns records whose timestamp is within [start, end).
func (j *SQLite) ListBetween(ctx context.Context, start, end time.Time) ([]TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx, selectRecords+`
		WHERE julianday("timestamp") >= julianday(?) AND julianday("timestamp") < julianday(?)
		ORDER BY julianday("timestamp") ASC, id ASC`, start, end)
	if err != nil {
		return nil, storageErr("list trade records", err)
	}
	return collect(rows)
}

// DayBounds returns [start, end) of the calendar day named by day
// (YYYY-MM-DD) in loc.
func DayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}

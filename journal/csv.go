package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"id", "timestamp", "name", "kind", "direction", "quantity", "price", "link"}

// WriteCSV writes records as CSV rows, header first.
func WriteCSV(w io.Writer, recs []TradeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range recs {
		err := cw.Write([]string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp.Format(time.RFC3339),
			r.Name,
			r.Kind.String(),
			r.Direction.String(),
			r.Quantity.String(),
			r.Price.String(),
			r.Link,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package journal

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Trades"

// WriteXLSX writes records to a single-sheet workbook.
func WriteXLSX(w io.Writer, recs []TradeRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.ID,
			r.Timestamp.Format(time.DateTime),
			r.Name,
			r.Kind.String(),
			r.Direction.String(),
			r.Quantity.InexactFloat64(),
			r.Price.InexactFloat64(),
			r.Link,
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r.ID, err)
		}
	}

	return f.Write(w)
}

package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatRecordOrg renders a TradeRecord as an Org-mode block suitable for pasting into a journal.
// Structured facts go in a PROPERTIES drawer so they stay searchable.
func FormatRecordOrg(r TradeRecord) string {
	heading := fmt.Sprintf("** %s %s: %s (#%d)", strings.ToUpper(r.Direction.String()), r.Kind, r.Name, r.ID)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %d\n", r.ID))
	b.WriteString(fmt.Sprintf(":TIMESTAMP: %s\n", r.Timestamp.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":NAME: %s\n", r.Name))
	b.WriteString(fmt.Sprintf(":KIND: %s\n", r.Kind))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", r.Direction))
	b.WriteString(fmt.Sprintf(":QUANTITY: %s\n", r.Quantity))
	b.WriteString(fmt.Sprintf(":PRICE: %s\n", r.Price))
	b.WriteString(fmt.Sprintf(":VALUE: %s\n", r.Value().StringFixed(2)))
	b.WriteString(fmt.Sprintf(":LINK: %s\n", r.Link))
	b.WriteString(":END:\n")

	return b.String()
}

// FormatRecordsOrg renders multiple records separated by blank lines.
func FormatRecordsOrg(recs []TradeRecord) string {
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatRecordOrg(r))
	}
	return b.String()
}

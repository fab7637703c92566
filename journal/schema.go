// journal/schema.go
package journal

// Quantities and prices are kept as decimal text so values round-trip exactly.
const Schema = `
CREATE TABLE IF NOT EXISTS trade_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	"timestamp" DATETIME NOT NULL,
	name TEXT NOT NULL,
	kind INTEGER NOT NULL CHECK (kind IN (0, 1)),
	direction INTEGER NOT NULL CHECK (direction IN (0, 1)),
	quantity TEXT NOT NULL,
	price TEXT NOT NULL,
	link TEXT NOT NULL DEFAULT '-'
);

CREATE INDEX IF NOT EXISTS idx_trade_records_timestamp ON trade_records("timestamp");
`

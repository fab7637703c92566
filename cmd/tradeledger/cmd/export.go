package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeledger/journal"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every trade record",
	Long: `Write all trade records as CSV, XLSX or Org.

Examples:
  tradeledger export --format csv > trades.csv
  tradeledger export --format xlsx -o trades.xlsx
  tradeledger export --format org`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportFormat string
	exportOutput string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv, xlsx or org")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	write, err := exporter(exportFormat)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	recs, err := a.store.ScanAll(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		defer f.Close()
		w = f
	}
	if err := write(w, recs); err != nil {
		return err
	}
	if exportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d records to %s\n", len(recs), exportOutput)
	}
	return nil
}

func exporter(format string) (func(io.Writer, []journal.TradeRecord) error, error) {
	switch format {
	case "csv":
		return journal.WriteCSV, nil
	case "xlsx":
		return journal.WriteXLSX, nil
	case "org":
		return func(w io.Writer, recs []journal.TradeRecord) error {
			_, err := fmt.Fprintln(w, journal.FormatRecordsOrg(recs))
			return err
		}, nil
	}
	return nil, fmt.Errorf("unknown export format %q (want csv, xlsx or org)", format)
}

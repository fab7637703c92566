package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeledger/ledger"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write an Org report with totals, the daily pivot and the chart",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

var reportOutput string

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output .org file (default stdout)")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.ledger.Report(cmd.Context())
	if err != nil {
		return err
	}

	if reportOutput == "" {
		return ledger.WriteReport(cmd.OutOrStdout(), r)
	}
	f, err := os.Create(reportOutput)
	if err != nil {
		return fmt.Errorf("create %s: %w", reportOutput, err)
	}
	defer f.Close()
	if err := ledger.WriteReport(f, r); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Report written: %s\n", reportOutput)
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeledger/chart"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Redraw the daily pivot chart",
	Long: `Render the daily pivot to <chart.dir>/<chart.prefix>_<YYYY-MM-DD>.png.

Example:
  tradeledger chart --dir /tmp/charts`,
	Args: cobra.NoArgs,
	RunE: runChart,
}

var chartDir string

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVar(&chartDir, "dir", "", "output directory (overrides chart.dir)")
}

func runChart(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.ledger.Snapshot(cmd.Context())
	if err != nil {
		return err
	}

	b := a.ledger.Charts()
	if chartDir != "" {
		b = chart.NewBuilder(chartDir, b.Prefix, b.Set)
	}
	path, err := b.WriteFile(snap.Pivot, time.Now())
	if errors.Is(err, chart.ErrNoChart) {
		fmt.Fprintln(cmd.OutOrStdout(), "no trades recorded, nothing to draw")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Chart written: %s (%s labels)\n", path, a.labels)
	return nil
}

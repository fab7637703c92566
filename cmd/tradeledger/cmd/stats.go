package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print ledger totals",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var pivotCmd = &cobra.Command{
	Use:   "pivot",
	Short: "Print the daily buy/sell pivot",
	Args:  cobra.NoArgs,
	RunE:  runPivot,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(pivotCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.ledger.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	s := snap.Stats
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "rows:        %d\n", s.RowCount)
	fmt.Fprintf(w, "total:       %s\n", s.Total.StringFixed(2))
	fmt.Fprintf(w, "buy total:   %s\n", s.BuyTotal.StringFixed(2))
	fmt.Fprintf(w, "sell total:  %s\n", s.SellTotal.StringFixed(2))
	fmt.Fprintf(w, "profit/loss: %s\n", s.ProfitLoss.StringFixed(2))
	return nil
}

func runPivot(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.ledger.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	if len(snap.Pivot) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no trades recorded")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "day\tbuy\tsell\tnet\tcumulative\t")
	for _, row := range snap.Pivot {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			row.Key(),
			row.Buy.StringFixed(2),
			row.Sell.StringFixed(2),
			row.Net.StringFixed(2),
			row.Cumulative.StringFixed(2),
		)
	}
	return tw.Flush()
}

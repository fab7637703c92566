package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeledger/entry"
	"github.com/rustyeddy/tradeledger/ledger"
)

var recordCmd = &cobra.Command{
	Use:   "record <message>",
	Short: "Record trades from a triggered message",
	Long: `Parse a message, append its trades to the store and print the reply a
chat user would see. The message must start with an enabled trigger.

Each trade is name, kind (0 spot, 1 contract), direction (0 sell, 1 buy),
quantity, price and an optional link, separated by commas, slashes,
full-width commas or spaces.

Examples:
  tradeledger record "🐍 BTC,1,1,0.5,64000"
  tradeledger record 🐍 ETH/0/0/2/3100/https://x/tx/1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	msg := strings.Join(args, " ")
	triggers := ledger.Triggers(cfg.EnabledTriggers())
	trigger, ok := triggers.Match(msg)
	if !ok {
		return fmt.Errorf("message must start with one of %v", []string(triggers))
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.ledger.Handle(cmd.Context(), msg, trigger)
	fmt.Fprintln(cmd.OutOrStdout(), out.Reply())
	if out.ChartPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "chart: %s\n", out.ChartPath)
	}
	if err != nil && !errors.Is(err, entry.ErrInsufficientFields) {
		return err
	}
	return nil
}

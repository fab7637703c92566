package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeledger/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query trade records",
	Long: `Query and display trade records as Org entries.

Subcommands:
  record - Get details of a specific record by ID
  today  - List records stored today
  day    - List records stored on a specific day

Examples:
  tradeledger journal record 42
  tradeledger journal today
  tradeledger journal day 2024-01-15`,
}

var journalRecordCmd = &cobra.Command{
	Use:   "record <id>",
	Short: "Get details of a specific record",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRecord,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List records stored today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List records stored on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRecordCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
}

func runJournalRecord(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("record id: %w", err)
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	q, err := a.querier()
	if err != nil {
		return err
	}

	rec, err := q.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRecordOrg(rec))
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return listDay(cmd, time.Now().In(time.Local).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(cmd, args[0])
}

func listDay(cmd *cobra.Command, day string) error {
	start, end, err := journal.DayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	q, err := a.querier()
	if err != nil {
		return err
	}

	recs, err := q.ListBetween(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("query records: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRecordsOrg(recs))
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the tradeledger CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tradeledger version %s\n", version)
		fmt.Println("A chat-triggered trade ledger")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

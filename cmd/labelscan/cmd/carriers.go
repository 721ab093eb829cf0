package cmd

import (
	"github.com/spf13/cobra"
)

var carriersCmd = &cobra.Command{
	Use:   "carriers",
	Short: "List the configured recognizers",
	Long:  `List the recognizers in the order they are tried, with the delivery method each one reports.`,
	Args:  cobra.NoArgs,
	RunE:  runCarriers,
}

func init() {
	rootCmd.AddCommand(carriersCmd)
}

func runCarriers(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}

	return a.formatter.PrintCarriers(a.chain)
}

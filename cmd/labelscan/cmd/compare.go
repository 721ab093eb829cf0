package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cliapi "label-scanner/internal/cli"
	"label-scanner/internal/compare"
	"label-scanner/internal/export"
	"label-scanner/internal/scanner"
)

var compareXLSX string

var compareCmd = &cobra.Command{
	Use:   "compare DIR_A DIR_B",
	Short: "Compare the orders found in two folders of label PDFs",
	Long: `Scan every PDF in two folders and report which order ids appear in both,
only in the first or only in the second folder.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareXLSX, "xlsx", "", "Write the comparison to an Excel workbook")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}

	manager, release, err := a.openCache()
	if err != nil {
		return err
	}
	defer release()

	s := a.newScanner()
	scan := func(ctx context.Context, path string) (*scanner.Result, error) {
		result, _, err := manager.ScanFile(ctx, s, path)
		return result, err
	}
	comparer := compare.New(scan, a.logger)

	var report *compare.Report
	spinner := cliapi.NewProgressSpinner(
		fmt.Sprintf("Comparing %s with %s", args[0], args[1]),
		a.cfg.NoColor || a.cfg.Quiet)
	if err := spinner.Run(func() error {
		var err error
		report, err = comparer.Compare(cmd.Context(), args[0], args[1])
		return err
	}); err != nil {
		return err
	}

	if compareXLSX != "" {
		if err := writeWorkbookFile(compareXLSX, func(w io.Writer) error {
			return export.WriteComparisonWorkbook(w, report)
		}); err != nil {
			return err
		}
		a.logger.Info("Workbook written", "path", compareXLSX)
	}

	return a.formatter.PrintComparison(report)
}

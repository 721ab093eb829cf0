package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"label-scanner/internal/config"
	"label-scanner/internal/export"
	"label-scanner/internal/scanner"
)

var (
	scanXLSX    string
	scanWorkers int
	scanNoCache bool
)

var scanCmd = &cobra.Command{
	Use:   "scan FILE...",
	Short: "Scan label PDFs",
	Long: `Scan one or more label PDFs and print the recognized orders followed by
the pages that could not be classified.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanXLSX, "xlsx", "", "Write the scan to an Excel workbook (single file only)")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 1, "Pages scanned concurrently")
	scanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "Bypass the scan cache")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanXLSX != "" && len(args) != 1 {
		return fmt.Errorf("--xlsx requires exactly one input file, got %d", len(args))
	}

	a, err := initializeApp(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("workers") {
			cfg.Workers = scanWorkers
		}
		if scanNoCache {
			cfg.DisableCache = true
		}
	})
	if err != nil {
		return err
	}

	manager, release, err := a.openCache()
	if err != nil {
		return err
	}
	defer release()

	s := a.newScanner()
	results := make([]*scanner.Result, 0, len(args))
	for _, path := range args {
		result, cached, err := manager.ScanFile(cmd.Context(), s, path)
		if err != nil {
			return err
		}

		summary := result.Summary()
		a.logger.Info("Scan completed",
			"path", path,
			"scan_id", result.ScanID,
			"pages", summary.Pages,
			"recognized", summary.Recognized,
			"unrecognized", summary.Unrecognized,
			"cached", cached)

		results = append(results, result)
	}

	if scanXLSX != "" {
		if err := writeWorkbookFile(scanXLSX, func(w io.Writer) error {
			return export.WriteWorkbook(w, results[0])
		}); err != nil {
			return err
		}
		a.logger.Info("Workbook written", "path", scanXLSX)
	}

	return a.formatter.PrintScans(results)
}

// writeWorkbookFile creates path and hands it to write
func writeWorkbookFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"label-scanner/internal/cache"
	"label-scanner/internal/carriers"
	"label-scanner/internal/compare"
	"label-scanner/internal/scanner"
)

// OutputFormatter handles different output formats
type OutputFormatter struct {
	format string
	quiet  bool
	out    io.Writer
	errOut io.Writer
}

// NewOutputFormatter creates a new output formatter writing to stdout and stderr
func NewOutputFormatter(format string, quiet bool) *OutputFormatter {
	return &OutputFormatter{
		format: format,
		quiet:  quiet,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// SetOutput redirects regular and error output
func (f *OutputFormatter) SetOutput(out, errOut io.Writer) {
	f.out = out
	f.errOut = errOut
}

// PrintScans prints the results of one or more scans.
// Quiet mode prints only order ids, one per line.
func (f *OutputFormatter) PrintScans(results []*scanner.Result) error {
	if f.quiet {
		for _, result := range results {
			for _, sn := range result.OrderSNs() {
				fmt.Fprintln(f.out, sn)
			}
		}
		return nil
	}

	switch f.format {
	case "json":
		if len(results) == 1 {
			return f.encode(results[0])
		}
		return f.encode(results)
	case "table":
		for i, result := range results {
			if len(results) > 1 {
				if i > 0 {
					fmt.Fprintln(f.out)
				}
				fmt.Fprintf(f.out, "== %s ==\n", result.Source)
			}
			if err := f.printScanTable(result); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintComparison prints a folder reconciliation.
// Quiet mode prints one-sided order ids, "-" for folder A and "+" for folder B.
func (f *OutputFormatter) PrintComparison(report *compare.Report) error {
	if f.quiet {
		for _, row := range report.OnlyInA {
			fmt.Fprintf(f.out, "- %s\n", row.OrderSN)
		}
		for _, row := range report.OnlyInB {
			fmt.Fprintf(f.out, "+ %s\n", row.OrderSN)
		}
		return nil
	}

	switch f.format {
	case "json":
		return f.encode(report)
	case "table":
		return f.printComparisonTable(report)
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// carrierEntry is the JSON shape of one chain position
type carrierEntry struct {
	Priority int                     `json:"priority"`
	Name     string                  `json:"name"`
	Method   carriers.DeliveryMethod `json:"delivery_method"`
}

// PrintCarriers prints the recognizer chain in priority order
func (f *OutputFormatter) PrintCarriers(chain *carriers.Chain) error {
	entries := make([]carrierEntry, 0, chain.Len())
	for i, r := range chain.Recognizers() {
		entries = append(entries, carrierEntry{Priority: i + 1, Name: r.Name(), Method: r.Method()})
	}

	if f.quiet {
		for _, e := range entries {
			fmt.Fprintln(f.out, e.Name)
		}
		return nil
	}

	switch f.format {
	case "json":
		return f.encode(entries)
	case "table":
		w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintln(w, "PRIORITY\tNAME\tCODE")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\n", e.Priority, e.Name, e.Method)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintCacheStats prints scan cache statistics
func (f *OutputFormatter) PrintCacheStats(stats cache.CacheStats) error {
	if f.quiet {
		fmt.Fprintln(f.out, stats.DatabaseTotal)
		return nil
	}

	switch f.format {
	case "json":
		return f.encode(stats)
	case "table":
		fmt.Fprintf(f.out, "Enabled: %v\n", !stats.Disabled)
		fmt.Fprintf(f.out, "TTL: %s\n", stats.TTL)
		fmt.Fprintf(f.out, "Memory entries: %d (%d expired)\n", stats.MemoryTotal, stats.MemoryExpired)
		fmt.Fprintf(f.out, "Database entries: %d (%d expired)\n", stats.DatabaseTotal, stats.DatabaseExpired)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintSuccess prints a success message
func (f *OutputFormatter) PrintSuccess(message string) {
	if !f.quiet {
		fmt.Fprintf(f.out, "✓ %s\n", message)
	}
}

// PrintError prints an error message
func (f *OutputFormatter) PrintError(err error) {
	if !f.quiet {
		fmt.Fprintf(f.errOut, "✗ Error: %v\n", err)
	}
}

// PrintInfo prints an informational message
func (f *OutputFormatter) PrintInfo(message string) {
	if !f.quiet {
		fmt.Fprintf(f.out, "ℹ %s\n", message)
	}
}

func (f *OutputFormatter) encode(v any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printScanTable prints recognized rows, then diagnostics, then a summary line
func (f *OutputFormatter) printScanTable(result *scanner.Result) error {
	if len(result.Rows) == 0 {
		fmt.Fprintln(f.out, "No orders found.")
	} else {
		w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PAGE\tORDER_SN\tSHOP\tPLATFORM\tCARRIER\tSERVICE")
		for _, row := range result.Rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				row.Page,
				row.OrderSN,
				truncate(row.ShopName, 30),
				row.Platform,
				row.DeliveryMethod,
				row.DeliveryMethodRaw)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(result.Unrecognized) > 0 {
		fmt.Fprintln(f.out)
		fmt.Fprintln(f.out, "Unrecognized pages:")

		w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PAGE\tREASON\tCARRIER\tERROR")
		for _, d := range result.Unrecognized {
			method := "-"
			if d.DeliveryMethod != nil {
				method = *d.DeliveryMethod
			}
			errText := "-"
			if d.Error != "" {
				errText = truncate(d.Error, 60)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", d.PageNumber, d.Reason, method, errText)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(f.out, "\n%d pages: %d recognized, %d unrecognized\n",
		result.Pages, len(result.Rows), len(result.Unrecognized))
	return nil
}

// printComparisonTable prints reconciliation counts and the one-sided orders
func (f *OutputFormatter) printComparisonTable(report *compare.Report) error {
	fmt.Fprintf(f.out, "Folder A: %s\n", report.A.Folder)
	fmt.Fprintf(f.out, "Folder B: %s\n\n", report.B.Folder)

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Orders in A\t%d\t\n", len(report.A.Rows))
	fmt.Fprintf(w, "Orders in B\t%d\t\n", len(report.B.Rows))
	fmt.Fprintf(w, "Common (A ∩ B)\t%d\t\n", len(report.Common))
	fmt.Fprintf(w, "Only in A\t%d\t\n", len(report.OnlyInA))
	fmt.Fprintf(w, "Only in B\t%d\t\n", len(report.OnlyInB))
	if err := w.Flush(); err != nil {
		return err
	}

	for _, folder := range []*compare.FolderScan{report.A, report.B} {
		for _, failed := range folder.Failed {
			fmt.Fprintf(f.errOut, "! Skipped %s: %s\n", failed.File, failed.Error)
		}
	}

	sections := []struct {
		title string
		rows  []compare.TaggedRow
	}{
		{"Only in A", report.OnlyInA},
		{"Only in B", report.OnlyInB},
	}
	for _, section := range sections {
		if len(section.rows) == 0 {
			continue
		}
		fmt.Fprintf(f.out, "\n%s (%d):\n", section.title, len(section.rows))

		w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tORDER_SN\tSHOP\tCARRIER\tFILE")
		for i, row := range section.rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				i+1, row.OrderSN, truncate(row.ShopName, 30), row.DeliveryMethod, row.SourceFile)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if report.Identical() {
		fmt.Fprintln(f.out)
		f.PrintSuccess("Both folders contain the same orders.")
	}
	return nil
}

// truncate shortens s to maxLen runes, marking the cut with "..."
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

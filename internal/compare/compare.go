package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"label-scanner/internal/scanner"
)

// ScanFunc scans one PDF file
type ScanFunc func(ctx context.Context, path string) (*scanner.Result, error)

// TaggedRow is a recognized row with the file it came from
type TaggedRow struct {
	scanner.OrderRow
	SourceFile string `json:"source_file"`
}

// FileError records a file that could not be scanned
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// FolderScan is the merged scan of every PDF in a folder.
// Rows hold one entry per order_sn, the first one seen in file order.
type FolderScan struct {
	Folder     string      `json:"folder"`
	Files      []string    `json:"files"`
	Failed     []FileError `json:"failed,omitempty"`
	Rows       []TaggedRow `json:"rows"`
	Duplicates int         `json:"duplicates"`
}

// OrderSNs returns the set of order ids in the folder
func (f *FolderScan) OrderSNs() map[string]TaggedRow {
	set := make(map[string]TaggedRow, len(f.Rows))
	for _, row := range f.Rows {
		set[row.OrderSN] = row
	}
	return set
}

// Report is the reconciliation of two folders
type Report struct {
	A       *FolderScan `json:"a"`
	B       *FolderScan `json:"b"`
	Common  []string    `json:"common"`
	OnlyInA []TaggedRow `json:"only_in_a"`
	OnlyInB []TaggedRow `json:"only_in_b"`
}

// Identical reports whether both folders hold the same orders
func (r *Report) Identical() bool {
	return len(r.OnlyInA) == 0 && len(r.OnlyInB) == 0
}

// Comparer reconciles the orders printed in two folders of label PDFs
type Comparer struct {
	scan   ScanFunc
	logger *slog.Logger
}

// New creates a comparer that scans files with scan
func New(scan ScanFunc, logger *slog.Logger) *Comparer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparer{scan: scan, logger: logger}
}

// Compare scans both folders and splits their orders into common and one-sided sets
func (c *Comparer) Compare(ctx context.Context, folderA, folderB string) (*Report, error) {
	a, err := c.ScanFolder(ctx, folderA)
	if err != nil {
		return nil, err
	}
	b, err := c.ScanFolder(ctx, folderB)
	if err != nil {
		return nil, err
	}

	setA, setB := a.OrderSNs(), b.OrderSNs()
	report := &Report{
		A:       a,
		B:       b,
		Common:  []string{},
		OnlyInA: onlyIn(setA, setB),
		OnlyInB: onlyIn(setB, setA),
	}
	for sn := range setA {
		if _, ok := setB[sn]; ok {
			report.Common = append(report.Common, sn)
		}
	}
	sort.Strings(report.Common)

	c.logger.Info("Folders compared",
		"common", len(report.Common),
		"only_in_a", len(report.OnlyInA),
		"only_in_b", len(report.OnlyInB))
	return report, nil
}

// ScanFolder scans every *.pdf file in folder in name order. Files that fail
// to scan are logged and skipped; a missing folder is an error.
func (c *Comparer) ScanFolder(ctx context.Context, folder string) (*FolderScan, error) {
	folder = cleanPath(folder)

	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("folder not found: %s: %w", folder, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a folder: %s", folder)
	}

	files, err := listPDFs(folder)
	if err != nil {
		return nil, err
	}

	result := &FolderScan{
		Folder: folder,
		Files:  files,
		Rows:   []TaggedRow{},
	}
	if len(files) == 0 {
		c.logger.Warn("No PDF files in folder", "folder", folder)
		return result, nil
	}

	seen := make(map[string]bool)
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		scan, err := c.scan(ctx, filepath.Join(folder, name))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			c.logger.Error("Failed to scan file", "folder", folder, "file", name, "error", err)
			result.Failed = append(result.Failed, FileError{File: name, Error: err.Error()})
			continue
		}

		for _, row := range scan.Rows {
			if seen[row.OrderSN] {
				result.Duplicates++
				continue
			}
			seen[row.OrderSN] = true
			result.Rows = append(result.Rows, TaggedRow{OrderRow: row, SourceFile: name})
		}
	}

	c.logger.Info("Folder scanned", "folder", folder, "files", len(files), "orders", len(result.Rows))
	return result, nil
}

// onlyIn returns rows of from whose order_sn is absent in other, sorted by order_sn
func onlyIn(from, other map[string]TaggedRow) []TaggedRow {
	rows := []TaggedRow{}
	for sn, row := range from {
		if _, ok := other[sn]; !ok {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].OrderSN < rows[j].OrderSN
	})
	return rows
}

// listPDFs returns the names of *.pdf files in folder, sorted
func listPDFs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folder, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// cleanPath strips whitespace and the quotes a pasted path often carries
func cleanPath(path string) string {
	return strings.Trim(strings.TrimSpace(path), `"'`)
}

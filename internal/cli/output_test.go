package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"label-scanner/internal/cache"
	"label-scanner/internal/carriers"
	"label-scanner/internal/compare"
	"label-scanner/internal/scanner"
)

func newTestFormatter(format string, quiet bool) (*OutputFormatter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	f := NewOutputFormatter(format, quiet)
	f.SetOutput(&out, &errOut)
	return f, &out, &errOut
}

func sampleScan() *scanner.Result {
	ghn := "GHN"
	return &scanner.Result{
		ScanID: "scan-1",
		Source: "labels.pdf",
		Pages:  4,
		Rows: []scanner.OrderRow{
			{Page: 1, OrderSN: "ORDER001", ShopName: "Shop ABC", Platform: carriers.PlatformShopee, DeliveryMethod: carriers.MethodSPX, DeliveryMethodRaw: "SPX Express"},
			{Page: 3, OrderSN: "TT999", ShopName: "MyShop", Platform: carriers.PlatformTikTok, DeliveryMethod: carriers.MethodJT, DeliveryMethodRaw: "J&T Express"},
		},
		Unrecognized: []scanner.Diagnostic{
			{PageNumber: 2, DeliveryMethod: &ghn, Reason: scanner.ReasonFieldMissing},
			{PageNumber: 4, Reason: scanner.ReasonNoCarrierMatch},
		},
	}
}

func sampleReport() *compare.Report {
	return &compare.Report{
		A:      &compare.FolderScan{Folder: "/in/a", Rows: make([]compare.TaggedRow, 3), Failed: []compare.FileError{{File: "bad.pdf", Error: "not a PDF"}}},
		B:      &compare.FolderScan{Folder: "/in/b", Rows: make([]compare.TaggedRow, 3)},
		Common: []string{"O2", "O3"},
		OnlyInA: []compare.TaggedRow{{
			OrderRow:   scanner.OrderRow{OrderSN: "O1", ShopName: "Shop A", DeliveryMethod: carriers.MethodSPX},
			SourceFile: "a1.pdf",
		}},
		OnlyInB: []compare.TaggedRow{{
			OrderRow:   scanner.OrderRow{OrderSN: "O4", ShopName: "Shop B", DeliveryMethod: carriers.MethodJT},
			SourceFile: "b1.pdf",
		}},
	}
}

func TestOutputFormatterPrintScans(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		quiet    bool
		contains []string
	}{
		{
			name:     "table format",
			format:   "table",
			contains: []string{"PAGE", "ORDER_SN", "ORDER001", "Shop ABC", "SPX Express", "Unrecognized pages:", "carrier_matched_field_missing", "4 pages: 2 recognized, 2 unrecognized"},
		},
		{
			name:     "json format",
			format:   "json",
			contains: []string{`"order_sn": "ORDER001"`, `"delivery_method": "GHN"`, `"delivery_method": null`, `"scan_id": "scan-1"`},
		},
		{
			name:     "quiet mode",
			format:   "table",
			quiet:    true,
			contains: []string{"ORDER001\nTT999\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, out, _ := newTestFormatter(tt.format, tt.quiet)
			require.NoError(t, f.PrintScans([]*scanner.Result{sampleScan()}))

			for _, expected := range tt.contains {
				assert.Contains(t, out.String(), expected)
			}
		})
	}
}

func TestOutputFormatterPrintScans_Multiple(t *testing.T) {
	second := sampleScan()
	second.Source = "more.pdf"

	f, out, _ := newTestFormatter("table", false)
	require.NoError(t, f.PrintScans([]*scanner.Result{sampleScan(), second}))
	assert.Contains(t, out.String(), "== labels.pdf ==")
	assert.Contains(t, out.String(), "== more.pdf ==")

	f, out, _ = newTestFormatter("json", false)
	require.NoError(t, f.PrintScans([]*scanner.Result{sampleScan(), second}))

	var decoded []scanner.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
}

func TestOutputFormatterPrintScans_NoOrders(t *testing.T) {
	f, out, _ := newTestFormatter("table", false)
	require.NoError(t, f.PrintScans([]*scanner.Result{{Pages: 1, Unrecognized: []scanner.Diagnostic{{PageNumber: 1, Reason: scanner.ReasonNoCarrierMatch}}}}))

	assert.Contains(t, out.String(), "No orders found.")
	assert.Contains(t, out.String(), "no_carrier_match")
}

func TestOutputFormatterUnsupportedFormat(t *testing.T) {
	f, _, _ := newTestFormatter("xml", false)

	assert.Error(t, f.PrintScans([]*scanner.Result{sampleScan()}))
	assert.Error(t, f.PrintComparison(sampleReport()))
	assert.Error(t, f.PrintCarriers(carriers.DefaultChain()))
	assert.Error(t, f.PrintCacheStats(cache.CacheStats{}))
}

func TestOutputFormatterPrintComparison(t *testing.T) {
	f, out, errOut := newTestFormatter("table", false)
	require.NoError(t, f.PrintComparison(sampleReport()))

	output := out.String()
	assert.Contains(t, output, "Folder A: /in/a")
	assert.Contains(t, output, "Only in A (1):")
	assert.Contains(t, output, "a1.pdf")
	assert.Contains(t, output, "Only in B (1):")
	assert.NotContains(t, output, "same orders")
	assert.Contains(t, errOut.String(), "Skipped bad.pdf")

	f, out, _ = newTestFormatter("table", true)
	require.NoError(t, f.PrintComparison(sampleReport()))
	assert.Equal(t, "- O1\n+ O4\n", out.String())
}

func TestOutputFormatterPrintComparison_Identical(t *testing.T) {
	report := sampleReport()
	report.OnlyInA, report.OnlyInB = nil, nil

	f, out, _ := newTestFormatter("table", false)
	require.NoError(t, f.PrintComparison(report))
	assert.Contains(t, out.String(), "✓ Both folders contain the same orders.")
}

func TestOutputFormatterPrintCarriers(t *testing.T) {
	f, out, _ := newTestFormatter("table", false)
	require.NoError(t, f.PrintCarriers(carriers.DefaultChain()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "tiktok_jt")
	assert.Contains(t, lines[1], "JT")
	assert.Contains(t, lines[3], "shopee_ghn")

	f, out, _ = newTestFormatter("json", false)
	require.NoError(t, f.PrintCarriers(carriers.DefaultChain()))
	assert.Contains(t, out.String(), `"priority": 2`)
	assert.Contains(t, out.String(), `"name": "shopee_spx"`)

	f, out, _ = newTestFormatter("table", true)
	require.NoError(t, f.PrintCarriers(carriers.DefaultChain()))
	assert.Equal(t, "tiktok_jt\nshopee_spx\nshopee_ghn\n", out.String())
}

func TestOutputFormatterPrintCacheStats(t *testing.T) {
	stats := cache.CacheStats{TTL: time.Hour, MemoryTotal: 2, DatabaseTotal: 3, DatabaseExpired: 1}

	f, out, _ := newTestFormatter("table", false)
	require.NoError(t, f.PrintCacheStats(stats))
	assert.Contains(t, out.String(), "Enabled: true")
	assert.Contains(t, out.String(), "Database entries: 3 (1 expired)")

	f, out, _ = newTestFormatter("table", true)
	require.NoError(t, f.PrintCacheStats(stats))
	assert.Equal(t, "3\n", out.String())
}

func TestOutputFormatterMessages(t *testing.T) {
	tests := []struct {
		name     string
		quiet    bool
		expected string
	}{
		{"normal mode", false, "✓ Operation successful"},
		{"quiet mode", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, out, errOut := newTestFormatter("table", tt.quiet)
			f.PrintSuccess("Operation successful")
			f.PrintError(errors.New("boom"))

			if tt.expected == "" {
				assert.Empty(t, out.String())
				assert.Empty(t, errOut.String())
				return
			}
			assert.Contains(t, out.String(), tt.expected)
			assert.Contains(t, errOut.String(), "✗ Error: boom")
		})
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly ten chars", 17, "exactly ten chars"},
		{"this is a very long string that should be truncated", 20, "this is a very lo..."},
		{"", 5, ""},
		{"abc", 3, "abc"},
		{"abcd", 3, "..."},
		{"Cửa hàng Điện máy", 10, "Cửa hàn..."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, truncate(tt.input, tt.maxLen), "truncate(%q, %d)", tt.input, tt.maxLen)
	}
}

func TestProgressSpinnerPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressSpinner("Scanning folders", true)
	p.out = &buf

	called := false
	err := p.Run(func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "Scanning folders...\n", buf.String())

	// Stopping twice is safe
	p.Stop()
}

func TestProgressSpinnerStopWithoutStart(t *testing.T) {
	p := NewProgressSpinner("idle", true)
	p.Stop()
}

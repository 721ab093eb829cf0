package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"label-scanner/internal/compare"
	"label-scanner/internal/scanner"
)

const (
	OrdersSheet       = "Orders"
	UnrecognizedSheet = "Unrecognized"
	OnlyInASheet      = "Only in A"
	OnlyInBSheet      = "Only in B"
	CommonSheet       = "Common"
)

var (
	orderHeaders        = []string{"page", "order_sn", "shop_name", "platform", "delivery_method", "delivery_method_raw"}
	diagnosticHeaders   = []string{"page_number", "reason", "delivery_method", "error"}
	reconciliationHeads = []string{"order_sn", "shop_name", "delivery_method", "page", "source_file"}
)

// columnWidth widens the columns From..To of Sheet
type columnWidth struct {
	Sheet    string
	From, To string
	Width    float64
}

var scanColumnWidths = []columnWidth{
	{OrdersSheet, "B", "C", 28},
	{OrdersSheet, "F", "F", 20},
	{UnrecognizedSheet, "B", "B", 30},
	{UnrecognizedSheet, "D", "D", 60},
}

func setColumnWidths(f *excelize.File, widths []columnWidth) error {
	for _, cw := range widths {
		if err := f.SetColWidth(cw.Sheet, cw.From, cw.To, cw.Width); err != nil {
			return fmt.Errorf("xlsx column width %s!%s:%s: %w", cw.Sheet, cw.From, cw.To, err)
		}
	}
	return nil
}

// sheetWriter appends rows to one sheet
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func (s *sheetWriter) write(values ...any) error {
	s.row++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return err
		}
		if err := s.f.SetCellValue(s.sheet, cell, v); err != nil {
			return fmt.Errorf("write %s!%s: %w", s.sheet, cell, err)
		}
	}
	return nil
}

// newWorkbook creates a file whose sheets are named sheets, in order,
// each with a bold header row
func newWorkbook(sheets []string, headers [][]string) (*excelize.File, []*sheetWriter, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	writers := make([]*sheetWriter, len(sheets))
	for i, name := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				f.Close()
				return nil, nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, nil, err
		}

		w := &sheetWriter{f: f, sheet: name}
		header := make([]any, len(headers[i]))
		for j, h := range headers[i] {
			header[j] = h
		}
		if err := w.write(header...); err != nil {
			f.Close()
			return nil, nil, err
		}
		last, err := excelize.CoordinatesToCellName(len(headers[i]), 1)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
			f.Close()
			return nil, nil, err
		}
		writers[i] = w
	}
	f.SetActiveSheet(0)
	return f, writers, nil
}

// WriteWorkbook writes one scan as an XLSX workbook with an Orders sheet and
// an Unrecognized sheet
func WriteWorkbook(w io.Writer, result *scanner.Result) error {
	f, sheets, err := newWorkbook(
		[]string{OrdersSheet, UnrecognizedSheet},
		[][]string{orderHeaders, diagnosticHeaders})
	if err != nil {
		return fmt.Errorf("xlsx init: %w", err)
	}
	defer f.Close()

	orders, unrecognized := sheets[0], sheets[1]
	for _, row := range result.Rows {
		if err := orders.write(row.Page, row.OrderSN, row.ShopName,
			string(row.Platform), string(row.DeliveryMethod), row.DeliveryMethodRaw); err != nil {
			return err
		}
	}
	for _, d := range result.Unrecognized {
		method := ""
		if d.DeliveryMethod != nil {
			method = *d.DeliveryMethod
		}
		if err := unrecognized.write(d.PageNumber, string(d.Reason), method, d.Error); err != nil {
			return err
		}
	}

	if err := setColumnWidths(f, scanColumnWidths); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// WriteComparisonWorkbook writes a folder reconciliation with one sheet per set
func WriteComparisonWorkbook(w io.Writer, report *compare.Report) error {
	f, sheets, err := newWorkbook(
		[]string{OnlyInASheet, OnlyInBSheet, CommonSheet},
		[][]string{reconciliationHeads, reconciliationHeads, {"order_sn"}})
	if err != nil {
		return fmt.Errorf("xlsx init: %w", err)
	}
	defer f.Close()

	for i, rows := range [][]compare.TaggedRow{report.OnlyInA, report.OnlyInB} {
		for _, row := range rows {
			if err := sheets[i].write(row.OrderSN, row.ShopName, string(row.DeliveryMethod), row.Page, row.SourceFile); err != nil {
				return err
			}
		}
	}
	for _, sn := range report.Common {
		if err := sheets[2].write(sn); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

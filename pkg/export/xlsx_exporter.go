package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type of workbooks written by XLSXExporter.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXExporter writes sheets into an Excel workbook.
type XLSXExporter struct {
	// ColumnWidth is applied to every column; zero keeps the Excel default.
	ColumnWidth float64
}

// NewXLSXExporter builds an exporter with readable column widths.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{ColumnWidth: 28}
}

// Render returns the workbook bytes.
func (e *XLSXExporter) Render(sheets []Sheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, sheets); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write builds one worksheet per entry, in order, and writes the workbook to w.
func (e *XLSXExporter) Write(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("xlsx: rename sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("xlsx: add sheet %q: %w", sheet.Name, err)
		}
		if err := e.fill(f, sheet, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}

func (e *XLSXExporter) fill(f *excelize.File, sheet Sheet, headerStyle int) error {
	if len(sheet.Headers) > 0 {
		header := make([]interface{}, len(sheet.Headers))
		for i, h := range sheet.Headers {
			header[i] = h
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
			return fmt.Errorf("xlsx: header of %q: %w", sheet.Name, err)
		}
		last, err := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("xlsx: style header of %q: %w", sheet.Name, err)
		}
		if e.ColumnWidth > 0 {
			lastCol, err := excelize.ColumnNumberToName(len(sheet.Headers))
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet.Name, "A", lastCol, e.ColumnWidth); err != nil {
				return fmt.Errorf("xlsx: column width of %q: %w", sheet.Name, err)
			}
		}
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return fmt.Errorf("xlsx: row %d of %q: %w", i+2, sheet.Name, err)
		}
	}
	return nil
}

// Preview reads the first sheet of an xlsx workbook and returns its header
// row and up to limit data rows.
func Preview(r io.Reader, limit int) (sheet string, headers []string, rows [][]string, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer f.Close()

	sheet = f.GetSheetName(0)
	if sheet == "" {
		return "", nil, nil, ErrNoSheets
	}
	iter, err := f.Rows(sheet)
	if err != nil {
		return "", nil, nil, fmt.Errorf("xlsx: read %q: %w", sheet, err)
	}
	defer iter.Close()

	for iter.Next() {
		cols, err := iter.Columns()
		if err != nil {
			return "", nil, nil, fmt.Errorf("xlsx: read %q: %w", sheet, err)
		}
		if headers == nil {
			headers = cols
			continue
		}
		if limit > 0 && len(rows) >= limit {
			break
		}
		rows = append(rows, cols)
	}
	return sheet, headers, rows, iter.Error()
}

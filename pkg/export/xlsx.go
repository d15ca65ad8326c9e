package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSX renders the table as a workbook with a Data sheet and a Metadata
// sheet, sizing columns to their content.
func (t Table) XLSX(label string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const dataSheet = "Data"
	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, err
	}

	for i, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(dataSheet, cell, col); err != nil {
			return nil, err
		}
	}
	for r, row := range t.Rows {
		for i, col := range t.Columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(dataSheet, cell, t.cell(row, col)); err != nil {
				return nil, err
			}
		}
	}

	t.sizeColumns(f, dataSheet)

	if err := t.writeMetadataSheet(f, label); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sizeColumns widens each column to its longest value, clamped to the
// same 12..55 range the original exporter used. Only the first 200 rows
// are sampled.
func (t Table) sizeColumns(f *excelize.File, sheet string) {
	for i, col := range t.Columns {
		maxLen := len(col)
		for r, row := range t.Rows {
			if r >= 200 {
				break
			}
			if l := len(t.cell(row, col)); l > maxLen {
				maxLen = l
			}
		}
		width := float64(maxLen + 2)
		if width < 12 {
			width = 12
		}
		if width > 55 {
			width = 55
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		_ = f.SetColWidth(sheet, name, name, width)
	}
}

func (t Table) writeMetadataSheet(f *excelize.File, label string) error {
	const sheet = "Metadata"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	meta := [][]interface{}{
		{"generated_at", time.Now().Format("2006-01-02 15:04:05")},
		{"label", label},
		{"row_count", len(t.Rows)},
		{"columns", fmt.Sprint(t.Columns)},
	}
	for r, kv := range meta {
		keyCell, _ := excelize.CoordinatesToCellName(1, r+1)
		valCell, _ := excelize.CoordinatesToCellName(2, r+1)
		if err := f.SetCellValue(sheet, keyCell, kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, valCell, kv[1]); err != nil {
			return err
		}
	}
	return nil
}

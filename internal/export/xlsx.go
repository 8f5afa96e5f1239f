// Package export renders projected reports into files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"cassa/internal/report"
)

const defaultSheet = "Sheet1"

// WriteXLSX writes a single-sheet workbook with one row per transaction.
// Amounts are stored as numbers so they can be summed in the spreadsheet.
func WriteXLSX(w io.Writer, sheet report.Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	name := sheet.Name
	if name == "" {
		name = report.SheetName
	}
	if err := f.SetSheetName(defaultSheet, name); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Date, r.Description, r.Type, r.Amount.InexactFloat64(), r.Mode}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(name, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(name, "B", "B", 32); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

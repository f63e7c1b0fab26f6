package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteFile serializes the report as an .xlsx workbook. The workbook is
// written once, at the end of a successful run; there are no partial or
// incremental writes.
func (r *Report) WriteFile(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range r.Sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", sheet.Name, err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", sheet.Name, err)
			}
		}

		if err := writeSheet(f, sheet); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

func writeSheet(f *excelize.File, sheet Sheet) error {
	if len(sheet.Header) > 0 {
		if err := setRow(f, sheet.Name, 1, sheet.Header); err != nil {
			return err
		}
	}

	for i, row := range sheet.Rows {
		if err := setRow(f, sheet.Name, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}

	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of sheet %s: %w", row, sheet, err)
	}

	return nil
}

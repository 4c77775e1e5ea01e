package loader

import (
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet of an OOXML spreadsheet. The sheet has
// the same shape as a delimited file: preamble, header row, data rows.
func readXLSX(path string, skipRows int) (*grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet %q: %w", path, sheet, err)
	}
	return gridFromSheet(path, rows, skipRows)
}

// readXLS reads the first sheet of a legacy binary spreadsheet.
func readXLS(path string, skipRows int) (*grid, error) {
	wb, closer, err := xls.OpenWithCloser(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer closer.Close()

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return gridFromSheet(path, rows, skipRows)
}

// gridFromSheet applies the preamble/header/data split to spreadsheet
// rows. Spreadsheet readers return ragged rows (trailing empty cells are
// dropped); normalize pads them against the header.
func gridFromSheet(path string, rows [][]string, skipRows int) (*grid, error) {
	if len(rows) <= skipRows {
		return nil, fmt.Errorf("%s: no header row after skipping %d preamble row(s)", path, skipRows)
	}
	g := &grid{header: rows[skipRows]}
	for i, cells := range rows[skipRows+1:] {
		g.rows = append(g.rows, record{source: skipRows + 2 + i, cells: cells})
	}
	return g, nil
}

package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/examtools/examconv/internal/question"
)

// BuildXLSX renders the same rows as BuildCSV into an XLSX workbook, for
// reviewers who want a spreadsheet instead of the raw import file.
func BuildXLSX(set *question.Set, category string, headers []string) ([]byte, error) {
	if len(headers) == 0 {
		headers = DefaultHeaders
	}
	questions := question.RecomputeMenuOrder(set.Questions)

	f := excelize.NewFile()
	const sheet = "Questions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, q := range questions {
		fields := rowFields(q, category)
		for colIdx, h := range headers {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, fields[h]); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

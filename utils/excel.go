package utils

import (
	"bytes"
	"complaint-portal/models"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const perpetratorSheet = "Perpetrators"

var perpetratorHeaders = []string{"Perpetrator", "Complaints", "Latest Incident"}

// PerpetratorWorkbook renders the perpetrator summary as an XLSX file.
func PerpetratorWorkbook(rows []models.PerpetratorSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(perpetratorSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#F3E6FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return nil, fmt.Errorf("failed to create date style: %w", err)
	}

	for col, header := range perpetratorHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(perpetratorSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(perpetratorSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}
	if err := f.SetColWidth(perpetratorSheet, "A", "A", 30); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(perpetratorSheet, "B", "C", 18); err != nil {
		return nil, err
	}

	for i, r := range rows {
		row := i + 2
		if err := setCellValue(f, perpetratorSheet, 1, row, r.Name); err != nil {
			return nil, err
		}
		if err := setCellValue(f, perpetratorSheet, 2, row, r.Count); err != nil {
			return nil, err
		}
		if !r.LatestIncident.IsZero() {
			if err := setCellValue(f, perpetratorSheet, 3, row, r.LatestIncident); err != nil {
				return nil, err
			}
			cell, _ := excelize.CoordinatesToCellName(3, row)
			if err := f.SetCellStyle(perpetratorSheet, cell, cell, dateStyle); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetPanes(perpetratorSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCellValue(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

package customer

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/admin-console/internal/repository"
)

const exportSheet = "Customers"

// ExportHeader is the first row of every customer export.
var ExportHeader = []string{"ID", "Name", "Email", "Phone", "Company", "Address", "Status", "Created At"}

var exportFields = []string{"id", "name", "email", "phone", "company", "address", "status", "createdAt"}

// GenerateExport renders customers as an xlsx workbook.
func GenerateExport(customers []repository.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &ExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(ExportHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, doc := range customers {
		row := make([]interface{}, len(exportFields))
		for j, field := range exportFields {
			row[j] = cellValue(doc[field])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	for col, width := range []float64{38, 24, 30, 18, 24, 36, 10, 22} {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheet, name, name, width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return t.UTC().Format("2006-01-02 15:04")
		}
		return val
	default:
		return val
	}
}

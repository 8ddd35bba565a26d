package export

import (
	"fmt"
	"io"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	materialsSheet  = "Materials"
)

var materialHeader = []interface{}{
	"ID", "Name", "SKU", "Category", "Quantity", "Minimum", "Unit Price", "Stock Value", "Low Stock", "Updated At",
}

// WriteMaterials renders materials as a single-sheet workbook into w.
func WriteMaterials(w io.Writer, materials []domain.Material) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), materialsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(materialsSheet, "A1", &materialHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, m := range materials {
		price, _ := m.UnitPrice.Float64()
		value, _ := m.StockValue().Float64()
		lowStock := "no"
		if m.IsLowStock() {
			lowStock = "yes"
		}
		row := []interface{}{
			m.ID,
			m.Name,
			m.SKU,
			m.CategoryName,
			m.Quantity,
			m.MinimumQuantity,
			price,
			value,
			lowStock,
			m.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(materialsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(materials) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return fmt.Errorf("price style: %w", err)
		}
		last := fmt.Sprintf("H%d", len(materials)+1)
		if err := f.SetCellStyle(materialsSheet, "G2", last, style); err != nil {
			return fmt.Errorf("apply price style: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"docshield/internal/core/domain"
)

const sheetName = "Documents"

var columns = []string{
	"Doc ID",
	"Holder",
	"Type",
	"Issue Date",
	"Expiry Date",
	"Content Digest",
	"Fingerprint",
	"Bound Hash",
	"Issued At",
}

// WriteRegistryXLSX renders the full registry into an XLSX workbook at path.
func WriteRegistryXLSX(path string, records []domain.DocumentRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, name := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, rec := range records {
		values := []any{
			rec.DocID,
			rec.HolderName,
			rec.DocType,
			rec.IssueDate,
			rec.ExpiryDate,
			rec.ContentDigest,
			rec.Fingerprint,
			rec.BoundHash,
			rec.IssuedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("row cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

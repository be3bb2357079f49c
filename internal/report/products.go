// Package report renders vendor spreadsheets.
package report

import (
	"fmt"
	"io"

	"bazaar/internal/model"

	"github.com/tealeg/xlsx"
)

// ContentType is the MIME type of the workbooks written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var productHeaders = []string{
	"ID", "Name", "Slug", "Type", "SellingMethod", "Price", "Stock",
	"MinOrderQuantity", "Active", "RentalPricePerDay", "CreatedAt", "UpdatedAt",
}

// WriteProducts writes products as a single-sheet workbook.
func WriteProducts(w io.Writer, products []model.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range productHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()

		row.AddCell().SetValue(p.ID.String())
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Slug)
		row.AddCell().SetValue(p.Type)
		row.AddCell().SetValue(p.SellingMethod)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetInt(p.StockQuantity)
		row.AddCell().SetInt(p.MinOrderQuantity)
		row.AddCell().SetBool(p.IsActive)

		rate := ""
		if p.RentalPricePerDay != nil {
			rate = p.RentalPricePerDay.StringFixed(2)
		}
		row.AddCell().SetValue(rate)

		row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

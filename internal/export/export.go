// Package export writes a report as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"StockDashboard/internal/model"

	"github.com/xuri/excelize/v2"
)

// SheetName is the only sheet in the workbook.
const SheetName = "Sheet1"

// Header is the first row of the sheet.
var Header = []string{"Date", "Open", "High", "Low", "Close", "Volume", "MA5", "MA20", "MA60"}

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileName returns the download name for the report, "<company>_주가.xlsx".
func FileName(rep *model.Report) string {
	name := rep.Company.Name
	if name == "" {
		name = rep.Company.Code
	}
	name = strings.NewReplacer("/", "_", "\\", "_", "\"", "").Replace(name)
	return name + "_주가.xlsx"
}

// WriteXLSX writes every row of the report, undefined moving averages left blank.
func WriteXLSX(w io.Writer, rep *model.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, h := range Header {
		if err := setCell(f, i+1, 1, h); err != nil {
			return err
		}
	}

	for i, r := range rep.Rows {
		row := i + 2
		values := []interface{}{
			r.Time.Format("2006-01-02"), r.Open, r.High, r.Low, r.Close, r.Volume,
		}
		for _, ma := range []*float64{r.MA5, r.MA20, r.MA60} {
			if ma == nil {
				values = append(values, nil)
				continue
			}
			values = append(values, *ma)
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			if err := setCell(f, col+1, row, v); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, cell, v); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	return nil
}

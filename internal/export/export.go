// Package export writes the table view as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Table"

// Header returns the column names of an exported table.
func Header(ind domain.Indicator) []string {
	return []string{"year", "week", "region", string(ind)}
}

// CSV writes rows in table order. Non-numeric values are written as their
// source text.
func CSV(w io.Writer, rows []domain.TableRow, ind domain.Indicator) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(ind)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.Year), strconv.Itoa(r.Week), r.Region, r.Value.String()}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX writes rows to a single-sheet workbook. Numeric values become number
// cells so spreadsheets can aggregate them.
func XLSX(w io.Writer, rows []domain.TableRow, ind domain.Indicator) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, 0, 4)
	for _, h := range Header(ind) {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Year, r.Week, r.Region, cellValue(r.Value)}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cellValue(v domain.Value) any {
	if v.Numeric && !math.IsInf(v.Number, 0) {
		return v.Number
	}
	return v.Text
}

package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"carbonmarket/ledger-backend/internal/archive"
	"carbonmarket/ledger-backend/internal/core"
)

// PortfolioReport is the input to the workbook export.
type PortfolioReport struct {
	Company     string
	Credits     []archive.CreditRow
	Trades      []archive.Trade
	ESG         core.CorporateESG
	GeneratedAt time.Time
}

// ExcelExporter writes portfolio reports as xlsx workbooks.
type ExcelExporter struct {
	file        *excelize.File
	headerStyle int
}

func NewExcelExporter() (*ExcelExporter, error) {
	file := excelize.NewFile()

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"226644"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	return &ExcelExporter{file: file, headerStyle: headerStyle}, nil
}

// WritePortfolio fills the workbook with the holdings, trade history and
// ESG summary sheets.
func (e *ExcelExporter) WritePortfolio(report PortfolioReport) error {
	if err := e.writeHoldings(report); err != nil {
		return err
	}
	if err := e.writeTrades(report); err != nil {
		return err
	}
	return e.writeESG(report)
}

func (e *ExcelExporter) writeHoldings(report PortfolioReport) error {
	const sheet = "Holdings"
	e.file.SetSheetName("Sheet1", sheet)

	headers := []string{"Credit ID", "Project ID", "Amount", "Biodiversity Bonus", "Verifications", "Retired", "Issued Block"}
	if err := e.writeHeader(sheet, headers); err != nil {
		return err
	}

	for i, c := range report.Credits {
		row := i + 2
		values := []interface{}{c.ID, c.ProjectID, c.Amount, c.BiodiversityBonus, c.VerificationCount, c.Retired, c.IssuedBlock}
		if err := e.writeRow(sheet, row, values); err != nil {
			return err
		}
	}

	e.autoFilter(sheet, len(headers), len(report.Credits))
	return nil
}

func (e *ExcelExporter) writeTrades(report PortfolioReport) error {
	const sheet = "Trades"
	if _, err := e.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{"Listing ID", "Credit ID", "Buyer", "Seller", "Amount", "Price Per Ton", "Total", "Block"}
	if err := e.writeHeader(sheet, headers); err != nil {
		return err
	}

	for i, t := range report.Trades {
		row := i + 2
		values := []interface{}{
			t.ListingID, t.CreditID, t.Buyer.String(), t.Seller.String(),
			t.Amount, t.PricePerTon, t.Amount * t.PricePerTon, t.Block,
		}
		if err := e.writeRow(sheet, row, values); err != nil {
			return err
		}
	}

	e.autoFilter(sheet, len(headers), len(report.Trades))
	return nil
}

func (e *ExcelExporter) writeESG(report PortfolioReport) error {
	const sheet = "ESG Summary"
	if _, err := e.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	rows := [][2]interface{}{
		{"Company", report.Company},
		{"Total Purchased", report.ESG.TotalPurchased},
		{"Total Retired", report.ESG.TotalRetired},
		{"ESG Score", report.ESG.Score},
		{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	for i, r := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		e.file.SetCellValue(sheet, labelCell, r[0])
		e.file.SetCellValue(sheet, valueCell, r[1])
		e.file.SetCellStyle(sheet, labelCell, labelCell, e.headerStyle)
	}
	e.file.SetColWidth(sheet, "A", "B", 24)
	return nil
}

func (e *ExcelExporter) writeHeader(sheet string, headers []string) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		e.file.SetCellStyle(sheet, cell, cell, e.headerStyle)
	}
	e.file.SetPanes(sheet, &excelize.Panes{
		Freeze: true,
		YSplit: 1,
	})
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	e.file.SetColWidth(sheet, "A", lastCol, 18)
	return nil
}

func (e *ExcelExporter) writeRow(sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := e.file.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

func (e *ExcelExporter) autoFilter(sheet string, columns, rows int) {
	if rows == 0 {
		return
	}
	last, _ := excelize.CoordinatesToCellName(columns, rows+1)
	e.file.AutoFilter(sheet, "A1:"+last, nil)
}

// WriteTo serializes the workbook.
func (e *ExcelExporter) WriteTo(w io.Writer) error {
	if err := e.file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Close releases the underlying file resources.
func (e *ExcelExporter) Close() error {
	return e.file.Close()
}

package certificates

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData carries everything printed on a retirement certificate.
type CertificateData struct {
	Number      string
	ProjectName string
	Location    string
	Category    string
	RetiredBy   string
	Amount      uint64
	Block       uint64
	IssuedAt    time.Time
}

// Render produces the certificate PDF.
func Render(data CertificateData) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 25, 20)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	pdf.SetDrawColor(34, 102, 68)
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, pageWidth-20, pageHeight-20, "D")

	pdf.SetFont("Arial", "B", 26)
	pdf.SetTextColor(34, 102, 68)
	pdf.CellFormat(0, 16, "Certificate of Carbon Credit Retirement", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 8, fmt.Sprintf("Certificate No. %s", data.Number), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 13)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, data.RetiredBy, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(0, 8, "has permanently retired", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, fmt.Sprintf("%d tonnes CO2e", data.Amount), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 12)
	rows := [][2]string{
		{"Project", data.ProjectName},
		{"Location", data.Location},
		{"Category", data.Category},
		{"Ledger block", fmt.Sprintf("%d", data.Block)},
		{"Issued", data.IssuedAt.Format("2 January 2006")},
	}
	labelWidth := 50.0
	left := (pageWidth - labelWidth - 90) / 2
	for _, row := range rows {
		pdf.SetX(left)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(labelWidth, 8, row[0]+":", "", 0, "R", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(90, 8, " "+row[1], "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

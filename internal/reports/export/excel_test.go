package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"carbonmarket/ledger-backend/internal/archive"
	"carbonmarket/ledger-backend/internal/core"
)

func TestWritePortfolioWorkbook(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()

	report := PortfolioReport{
		Company: buyer.String(),
		Credits: []archive.CreditRow{
			{ID: 1, ProjectID: 1, Owner: buyer, Amount: 100, VerificationCount: 10, IssuedBlock: 110},
			{ID: 2, ProjectID: 2, Owner: buyer, Amount: 250, BiodiversityBonus: 150, VerificationCount: 12, IssuedBlock: 115},
		},
		Trades: []archive.Trade{
			{ListingID: 7, CreditID: 1, Buyer: buyer, Seller: seller, Amount: 40, PricePerTon: 25, Block: 120},
		},
		ESG: core.CorporateESG{
			Company:        buyer,
			TotalPurchased: 40,
			TotalRetired:   10,
			Score:          25,
		},
		GeneratedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	exporter, err := NewExcelExporter()
	require.NoError(t, err)
	defer exporter.Close()

	require.NoError(t, exporter.WritePortfolio(report))

	var buf bytes.Buffer
	require.NoError(t, exporter.WriteTo(&buf))
	require.NotZero(t, buf.Len())

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	assert.ElementsMatch(t, []string{"Holdings", "Trades", "ESG Summary"}, file.GetSheetList())

	header, err := file.GetCellValue("Holdings", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Credit ID", header)

	amount, err := file.GetCellValue("Holdings", "C3")
	require.NoError(t, err)
	assert.Equal(t, "250", amount)

	total, err := file.GetCellValue("Trades", "G2")
	require.NoError(t, err)
	assert.Equal(t, "1000", total)

	score, err := file.GetCellValue("ESG Summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "25", score)
}

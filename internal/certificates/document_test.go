package certificates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPDF(t *testing.T) {
	data := CertificateData{
		Number:      "RET-000003-130",
		ProjectName: "Mangrove Restoration",
		Location:    "Indonesia",
		Category:    "blue-carbon",
		RetiredBy:   "3f2504e0-4f89-41d3-9a0c-0305e82c3301",
		Amount:      50,
		Block:       130,
		IssuedAt:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}

	document, err := Render(data)
	require.NoError(t, err)
	require.NotEmpty(t, document)
	assert.Equal(t, "%PDF", string(document[:4]))
}

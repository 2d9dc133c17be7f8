package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andy/jumplog/internal/config"
	"github.com/andy/jumplog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() *domain.Invoice {
	day := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	return &domain.Invoice{
		ID:            "inv-1",
		InvoiceNumber: 1001,
		DropZone:      "Skydive Perris",
		Status:        domain.InvoiceStatusLocked,
		DateCreated:   day,
		Items: []domain.LineItem{
			{JumpID: "j1", JumpNumber: 812, Date: day, CustomerName: "Sam Student", Service: "Tandem", Quantity: 1, Rate: 45, Total: 45},
			{JumpID: "j1", JumpNumber: 812, Date: day, CustomerName: "Sam Student", Service: "Video", Quantity: 1, Rate: 1230, Total: 1230},
		},
		Total: 1275,
	}
}

func TestWriteInvoiceText(t *testing.T) {
	var b strings.Builder
	err := WriteInvoiceText(&b, sampleInvoice(), config.InstructorConfig{
		Name:    "Alex Rigger",
		License: "USPA D-12345",
		Email:   "alex@example.com",
	})
	require.NoError(t, err)

	out := b.String()
	assert.Contains(t, out, "Invoice #:  1001")
	assert.Contains(t, out, "Status:     locked")
	assert.Contains(t, out, "  Alex Rigger\n  USPA D-12345\n  alex@example.com\n")
	assert.Contains(t, out, "Bill To:\n  Skydive Perris\n")
	assert.Contains(t, out, "#812")
	assert.Contains(t, out, "$1,230.00")
	assert.Contains(t, out, "$1,275.00")
	assert.NotContains(t, out, "Paid:")
}

func TestWriteInvoiceText_NoInstructor(t *testing.T) {
	var b strings.Builder
	require.NoError(t, WriteInvoiceText(&b, sampleInvoice(), config.InstructorConfig{}))
	assert.NotContains(t, b.String(), "From:")
}

func TestWriteInvoiceFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteInvoiceFile(dir, sampleInvoice(), config.InstructorConfig{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoice-1001-skydive-perris.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "INVOICE\n"))
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{45, "$45.00"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{-75, "-$75.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(tt.in))
	}
}

func TestTruncateAndFreefall(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Skydiv...", Truncate("Skydive Perris", 9))
	assert.Equal(t, "45s", Freefall(45))
	assert.Equal(t, "1m 05s", Freefall(65))
}

// Package render produces the documents handed to dropzones. Nothing here
// changes billing state.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andy/jumplog/internal/config"
	"github.com/andy/jumplog/internal/domain"
)

const (
	width      = 64
	dateLayout = "Jan 02, 2006"
)

// WriteInvoiceText writes a plain-text invoice
func WriteInvoiceText(w io.Writer, inv *domain.Invoice, from config.InstructorConfig) error {
	var b strings.Builder

	sep := strings.Repeat("=", width)
	line := strings.Repeat("-", width)

	b.WriteString("INVOICE\n")
	b.WriteString(sep + "\n")
	fmt.Fprintf(&b, "Invoice #:  %d\n", inv.InvoiceNumber)
	fmt.Fprintf(&b, "Status:     %s\n", inv.Status)
	fmt.Fprintf(&b, "Created:    %s\n", inv.DateCreated.Format(dateLayout))
	if inv.DateSent != nil {
		fmt.Fprintf(&b, "Sent:       %s\n", inv.DateSent.Format(dateLayout))
	}
	if inv.DatePaid != nil {
		fmt.Fprintf(&b, "Paid:       %s\n", inv.DatePaid.Format(dateLayout))
	}

	if from.Name != "" || from.Email != "" {
		b.WriteString("\nFrom:\n")
		for _, v := range []string{from.Name, from.License, from.Email, from.Address, from.Phone} {
			if v != "" {
				fmt.Fprintf(&b, "  %s\n", v)
			}
		}
	}

	b.WriteString("\nBill To:\n")
	fmt.Fprintf(&b, "  %s\n", inv.DropZone)

	b.WriteString("\n" + line + "\n")
	fmt.Fprintf(&b, "%-12s %-6s %-18s %-10s %3s %10s\n", "Date", "Jump", "Customer", "Service", "Qty", "Amount")
	b.WriteString(line + "\n")

	for _, item := range inv.Items {
		fmt.Fprintf(&b, "%-12s %-6s %-18s %-10s %3d %10s\n",
			item.Date.Format("Jan 02"),
			fmt.Sprintf("#%d", item.JumpNumber),
			Truncate(item.CustomerName, 18),
			Truncate(item.Service, 10),
			item.Quantity,
			Money(item.Total),
		)
	}

	b.WriteString(line + "\n")
	fmt.Fprintf(&b, "%53s %10s\n", "TOTAL", Money(inv.Total))
	b.WriteString(sep + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// FileName is the document name for an invoice
func FileName(inv *domain.Invoice) string {
	dz := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		}
		return -1
	}, inv.DropZone)
	return fmt.Sprintf("invoice-%d-%s.txt", inv.InvoiceNumber, strings.ToLower(dz))
}

// WriteInvoiceFile writes the invoice under dir and returns the path
func WriteInvoiceFile(dir string, inv *domain.Invoice, from config.InstructorConfig) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, FileName(inv))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create invoice file: %w", err)
	}
	if err := WriteInvoiceText(f, inv, from); err != nil {
		f.Close()
		return "", fmt.Errorf("write invoice file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

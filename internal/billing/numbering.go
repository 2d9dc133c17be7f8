package billing

import (
	"github.com/andy/jumplog/internal/domain"
)

// DefaultStartingInvoiceNumber is used when no invoices exist yet
const DefaultStartingInvoiceNumber = 1000

// NextJumpNumber allocates the next jump number. A configured current
// number at or above the highest logged jump is trusted so the user can
// move the sequence forward; otherwise gaps left by deletions are filled
// lowest first.
func NextJumpNumber(existing []int, configuredCurrent int) int {
	n, _ := AllocateJumpNumber(existing, configuredCurrent)
	return n
}

// AllocateJumpNumber is NextJumpNumber that also returns the current
// number to store afterwards. It advances only when the number came from
// the configured sequence, so consecutive allocations continue it
// instead of falling back to gap-fill.
func AllocateJumpNumber(existing []int, configuredCurrent int) (number, current int) {
	if len(existing) == 0 {
		return configuredCurrent + 1, configuredCurrent + 1
	}

	highest := 0
	used := make(map[int]struct{}, len(existing))
	for _, n := range existing {
		used[n] = struct{}{}
		if n > highest {
			highest = n
		}
	}

	if configuredCurrent >= highest {
		return configuredCurrent + 1, configuredCurrent + 1
	}

	for n := 1; n <= highest; n++ {
		if _, ok := used[n]; !ok {
			return n, configuredCurrent
		}
	}
	return highest + 1, configuredCurrent
}

// NextInvoiceNumber returns max(existing numbers, start) + 1
func NextInvoiceNumber(invoices []domain.Invoice, start int) int {
	highest := start
	for _, inv := range invoices {
		if inv.InvoiceNumber > highest {
			highest = inv.InvoiceNumber
		}
	}
	return highest + 1
}

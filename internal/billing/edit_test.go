package billing

import (
	"testing"
	"time"

	"github.com/andy/jumplog/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMergeEdit_PreservesBillingState(t *testing.T) {
	existing := workJump("j1", 7, "DZ", "Tandem", "Video", "Coach")
	existing.CreatedAt = t0
	existing.InvoicedServices = []string{"Tandem"}
	existing.PendingInvoiceServices = []string{"Video"}
	existing.InvoiceIDs = []string{"inv-1", "inv-2"}
	existing.InvoiceStatus = domain.JumpLocked
	existing.RateAtTimeOfJump = []domain.ServiceRate{{Service: "Tandem", Rate: 40}, {Service: "Coach", Rate: 20}}

	edited := domain.Jump{
		ID:            "ignored",
		JumpNumber:    8,
		Date:          t0.Add(24 * time.Hour),
		DropZone:      "DZ",
		Notes:         "hop and pop",
		InvoiceItems:  []string{" Coach ", "Camera", ""},
		InvoiceStatus: domain.JumpUnbilled,
		InvoiceIDs:    []string{"bogus"},
	}

	out := MergeEdit(existing, edited)

	assert.Equal(t, "j1", out.ID)
	assert.Equal(t, t0, out.CreatedAt)
	assert.Equal(t, 8, out.JumpNumber)
	assert.Equal(t, "hop and pop", out.Notes)
	assert.True(t, out.WorkJump)
	assert.Equal(t, []string{"Coach", "Camera", "Tandem", "Video"}, out.InvoiceItems)
	assert.Equal(t, []string{"Tandem"}, out.InvoicedServices)
	assert.Equal(t, []string{"Video"}, out.PendingInvoiceServices)
	assert.Equal(t, []string{"inv-1", "inv-2"}, out.InvoiceIDs)
	assert.Equal(t, domain.JumpLocked, out.InvoiceStatus)
	assert.Equal(t, []domain.ServiceRate{{Service: "Tandem", Rate: 40}}, out.RateAtTimeOfJump)
	assert.Equal(t, []string{"Coach", "Camera"}, out.AvailableServices())
}

func TestResetBillingAndSettle(t *testing.T) {
	j := workJump("j1", 1, "DZ", "Tandem", "Tandem", "Video")
	j.PendingInvoiceServices = []string{"Video"}
	j.InvoiceIDs = []string{"x"}
	j.InvoiceStatus = domain.JumpDraft

	fresh := ResetBilling(j)
	assert.Equal(t, []string{"Tandem", "Video"}, fresh.InvoiceItems)
	assert.Empty(t, fresh.PendingInvoiceServices)
	assert.Empty(t, fresh.InvoiceIDs)
	assert.Equal(t, domain.JumpUnbilled, fresh.InvoiceStatus)

	settled := Settle(j)
	assert.True(t, settled.Settled)
	assert.Equal(t, []string{"Tandem", "Video"}, settled.InvoicedServices)
	assert.Empty(t, settled.AvailableServices())
	assert.Equal(t, domain.JumpPaid, ProjectStatus(settled, nil))
	assert.NoError(t, CheckInvariants(State{Jumps: []domain.Jump{settled}}))
}

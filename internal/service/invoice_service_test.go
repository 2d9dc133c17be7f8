package service

import (
	"context"
	"errors"
	"testing"

	"github.com/andy/jumplog/internal/billing"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceService_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j1 := f.addWorkJump(t, "Skydive Elsinore", "Tandem", "Video")

	res, err := f.invoices.CreateOrReview(ctx, "Skydive Elsinore", []string{j1.ID})
	require.NoError(t, err)
	require.True(t, res.Created)
	inv := res.Invoice
	assert.Equal(t, 1001, inv.InvoiceNumber)
	assert.Equal(t, 75.0, inv.Total)
	assert.Equal(t, []string{"Tandem", "Video"}, f.jump(t, j1.ID).PendingInvoiceServices)
	f.assertConsistent(t)

	locked, err := f.invoices.Lock(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusLocked, locked.Status)
	stored := f.jump(t, j1.ID)
	assert.Equal(t, []string{"Tandem", "Video"}, stored.InvoicedServices)
	assert.Empty(t, stored.PendingInvoiceServices)
	assert.Equal(t, domain.JumpLocked, stored.InvoiceStatus)
	f.assertConsistent(t)

	_, err = f.invoices.Send(ctx, inv.ID)
	require.NoError(t, err)
	paid, err := f.invoices.MarkPaid(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, paid.DatePaid)
	assert.Equal(t, domain.JumpPaid, f.jump(t, j1.ID).InvoiceStatus)
	f.assertConsistent(t)

	history, err := f.invoices.History(ctx, inv.ID)
	require.NoError(t, err)
	actions := make([]string, 0, len(history))
	for _, e := range history {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{"create", "lock", "send", "pay"}, actions)
	assert.Equal(t, domain.InvoiceStatusSent, history[3].FromStatus)
	assert.Equal(t, domain.InvoiceStatusPaid, history[3].ToStatus)
}

func TestInvoiceService_ConflictReturnsExistingDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j1 := f.addWorkJump(t, "DZ", "Tandem")
	j2 := f.addWorkJump(t, "DZ", "Video")

	first, err := f.invoices.CreateOrReview(ctx, "DZ", []string{j1.ID})
	require.NoError(t, err)

	second, err := f.invoices.CreateOrReview(ctx, "DZ", []string{j2.ID})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Invoice.ID, second.Invoice.ID)

	assert.Empty(t, f.jump(t, j2.ID).PendingInvoiceServices)
	all, err := f.invoices.List(ctx, repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInvoiceService_NothingToInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j1 := f.addWorkJump(t, "DZ", "Tandem")

	res, err := f.invoices.CreateOrReview(ctx, "DZ", []string{j1.ID})
	require.NoError(t, err)
	_, err = f.invoices.Lock(ctx, res.Invoice.ID)
	require.NoError(t, err)

	_, err = f.invoices.CreateOrReview(ctx, "DZ", []string{j1.ID})
	require.ErrorIs(t, err, billing.ErrNothingToInvoice)

	all, err := f.invoices.List(ctx, repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInvoiceService_ReopenAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j1 := f.addWorkJump(t, "DZ", "Tandem", "Video")

	res, err := f.invoices.CreateOrReview(ctx, "DZ", []string{j1.ID})
	require.NoError(t, err)
	id := res.Invoice.ID

	_, err = f.invoices.Lock(ctx, id)
	require.NoError(t, err)
	reopened, err := f.invoices.Reopen(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusDraft, reopened.Status)
	assert.Nil(t, reopened.DateLocked)
	assert.Equal(t, []string{"Tandem", "Video"}, f.jump(t, j1.ID).PendingInvoiceServices)
	f.assertConsistent(t)

	require.NoError(t, f.invoices.DeleteOpen(ctx, id))
	stored := f.jump(t, j1.ID)
	assert.Empty(t, stored.InvoiceIDs)
	assert.Empty(t, stored.PendingInvoiceServices)
	assert.Equal(t, domain.JumpUnbilled, stored.InvoiceStatus)
	f.assertConsistent(t)

	_, err = f.invoices.Get(ctx, id)
	require.ErrorIs(t, err, billing.ErrInvoiceNotFound)

	// the audit trail outlives the invoice
	history, err := f.invoices.History(ctx, id)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestInvoiceService_DeleteRejectsLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j1 := f.addWorkJump(t, "DZ", "Tandem")

	res, err := f.invoices.CreateOrReview(ctx, "DZ", []string{j1.ID})
	require.NoError(t, err)
	_, err = f.invoices.Lock(ctx, res.Invoice.ID)
	require.NoError(t, err)

	err = f.invoices.DeleteOpen(ctx, res.Invoice.ID)
	require.ErrorIs(t, err, billing.ErrInvoiceNotDeletable)

	_, err = f.invoices.MarkPaid(ctx, res.Invoice.ID)
	require.NoError(t, err)
	_, err = f.invoices.Reopen(ctx, res.Invoice.ID)
	require.ErrorIs(t, err, billing.ErrInvoicePaid)
}

func TestInvoiceService_RollsBackOnWriteFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j1 := f.addWorkJump(t, "DZ", "Tandem", "Video")

	boom := errors.New("disk full")
	f.store.FailOn("Events.Append", boom)

	_, err := f.invoices.CreateOrReview(ctx, "DZ", []string{j1.ID})
	require.ErrorIs(t, err, boom)

	all, err := f.invoices.List(ctx, repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	stored := f.jump(t, j1.ID)
	assert.Empty(t, stored.PendingInvoiceServices)
	assert.Empty(t, stored.InvoiceIDs)

	f.store.FailOn("Events.Append", nil)
	res, err := f.invoices.CreateOrReview(ctx, "DZ", []string{j1.ID})
	require.NoError(t, err)
	assert.True(t, res.Created)

	// a failed lock leaves the draft untouched
	f.store.FailOn("Jumps.Update", boom)
	_, err = f.invoices.Lock(ctx, res.Invoice.ID)
	require.ErrorIs(t, err, boom)

	inv, err := f.invoices.Get(ctx, res.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, []string{"Tandem", "Video"}, f.jump(t, j1.ID).PendingInvoiceServices)
	f.assertConsistent(t)
}

func TestInvoiceService_GetByNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j1 := f.addWorkJump(t, "DZ", "Coach")

	res, err := f.invoices.CreateOrReview(ctx, "DZ", []string{j1.ID})
	require.NoError(t, err)

	inv, err := f.invoices.Get(ctx, "#1001")
	require.NoError(t, err)
	assert.Equal(t, res.Invoice.ID, inv.ID)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Coach", inv.Items[0].Service)
}

func TestInvoiceService_DropZoneRequired(t *testing.T) {
	f := newFixture(t)
	_, err := f.invoices.CreateOrReview(context.Background(), "  ", nil)
	require.Error(t, err)
}

package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/andy/jumplog/internal/billing"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService_RoundTrip(t *testing.T) {
	src := newFixture(t)
	ctx := context.Background()

	j1 := src.addWorkJump(t, "DZ", "Tandem", "Video")
	j2 := src.addWorkJump(t, "DZ", "Coach")
	res, err := src.invoices.CreateOrReview(ctx, "DZ", []string{j1.ID})
	require.NoError(t, err)
	_, err = src.invoices.Lock(ctx, res.Invoice.ID)
	require.NoError(t, err)
	_, err = src.invoices.CreateOrReview(ctx, "DZ", []string{j2.ID})
	require.NoError(t, err)
	require.NoError(t, src.jumps.SetCurrentJumpNumber(ctx, 40))

	var buf bytes.Buffer
	snap, err := src.backup.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, BackupVersion, snap.Version)
	assert.Len(t, snap.Jumps, 2)
	assert.Len(t, snap.Invoices, 2)
	assert.Len(t, snap.Events, 3)
	assert.Equal(t, []string{"DZ"}, snap.Registry[domain.RegistryDropZone])

	dst := newFixture(t)
	dst.addWorkJump(t, "Elsewhere", "Tandem")
	require.NoError(t, dst.settings.DeleteRate(ctx, "Coach"))

	_, err = dst.backup.Restore(ctx, &buf, RestoreOptions{})
	require.NoError(t, err)

	jumps, err := dst.jumps.List(ctx, repository.JumpFilter{})
	require.NoError(t, err)
	require.Len(t, jumps, 2)
	restored := dst.jump(t, j1.ID)
	assert.Equal(t, []string{"Tandem", "Video"}, restored.InvoicedServices)
	assert.Equal(t, domain.JumpLocked, restored.InvoiceStatus)
	assert.Equal(t, domain.JumpDraft, dst.jump(t, j2.ID).InvoiceStatus)

	invoices, err := dst.invoices.List(ctx, repository.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, invoices, 2)

	rates, err := dst.settings.ListRates(ctx)
	require.NoError(t, err)
	assert.Len(t, rates, 3)

	n, err := dst.jumps.CurrentJumpNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, n)

	names, err := dst.settings.ListNames(ctx, domain.RegistryDropZone)
	require.NoError(t, err)
	assert.Equal(t, []string{"DZ"}, names)

	history, err := dst.invoices.History(ctx, res.Invoice.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "create", history[0].Action)
	assert.Equal(t, "lock", history[1].Action)
	assert.Equal(t, domain.InvoiceStatusLocked, history[1].ToStatus)
	dst.assertConsistent(t)
}

const legacyBackup = `{
  "version": 1,
  "jumps": [
    {
      "id": "j1",
      "jumpNumber": 7,
      "date": "2024-05-01T10:00:00Z",
      "dropZone": "DZ",
      "workJump": true,
      "invoiceItems": ["Tandem"],
      "pendingInvoiceServices": ["Tandem"],
      "invoiceStatus": "unbilled",
      "invoiceId": "inv-1"
    }
  ],
  "invoices": [
    {
      "id": "inv-1",
      "invoiceNumber": 1001,
      "dropZone": "DZ",
      "status": "draft",
      "items": [{"jumpId": "j1", "jumpNumber": 7, "service": "Tandem", "quantity": 1, "rate": 45, "total": 45}],
      "total": 45,
      "dateCreated": "2024-05-02T10:00:00Z"
    }
  ]
}`

func TestBackupService_RestoreFoldsLegacyInvoiceID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.backup.Restore(ctx, strings.NewReader(legacyBackup), RestoreOptions{})
	require.NoError(t, err)

	j := f.jump(t, "j1")
	assert.Equal(t, []string{"inv-1"}, j.InvoiceIDs)
	assert.Equal(t, domain.JumpDraft, j.InvoiceStatus)
	f.assertConsistent(t)

	inv, err := f.invoices.Lock(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusLocked, inv.Status)
	assert.Equal(t, []string{"Tandem"}, f.jump(t, "j1").InvoicedServices)
}

func TestBackupService_RejectsInconsistentBackup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := f.addWorkJump(t, "Home", "Tandem")

	// pending service with no draft behind it
	broken := strings.Replace(legacyBackup, `"invoiceId": "inv-1"`, `"invoiceId": "inv-missing"`, 1)

	_, err := f.backup.Restore(ctx, strings.NewReader(broken), RestoreOptions{})
	require.ErrorIs(t, err, billing.ErrInvariant)
	assert.Equal(t, "Home", f.jump(t, existing.ID).DropZone)

	_, err = f.backup.Restore(ctx, strings.NewReader(broken), RestoreOptions{Force: true})
	require.NoError(t, err)
	_, err = f.jumps.Get(ctx, existing.ID)
	require.ErrorIs(t, err, billing.ErrJumpNotFound)
}

func TestBackupService_RejectsNewerVersion(t *testing.T) {
	f := newFixture(t)
	_, err := f.backup.Restore(context.Background(), strings.NewReader(`{"version": 99}`), RestoreOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestBackupService_RestoreFailureKeepsData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := f.addWorkJump(t, "Home", "Tandem")

	f.store.FailOn("Invoices.Create", assert.AnError)
	_, err := f.backup.Restore(ctx, strings.NewReader(legacyBackup), RestoreOptions{})
	require.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, "Home", f.jump(t, existing.ID).DropZone)
	_, err = f.jumps.Get(ctx, "j1")
	require.ErrorIs(t, err, billing.ErrJumpNotFound)
}

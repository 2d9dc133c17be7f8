package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/andy/jumplog/internal/billing"
	"github.com/andy/jumplog/internal/config"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
	"github.com/andy/jumplog/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "jumplog.db")
	cfg.Invoice.OutputDir = filepath.Join(dir, "invoices")

	a, err := Open(context.Background(), cfg, "correct horse")
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func addJump(t *testing.T, a *App, dz string, services ...string) *domain.Jump {
	t.Helper()
	j, err := a.JumpService.Save(context.Background(), &domain.Jump{
		Date:         time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC),
		DropZone:     dz,
		Aircraft:     "Twin Otter",
		WorkJump:     true,
		CustomerName: "Sam",
		InvoiceItems: services,
	}, "")
	require.NoError(t, err)
	return j
}

func TestOpen_RunsMigrations(t *testing.T) {
	a := openTestApp(t)
	v, err := a.DB.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestSQLStore_InvoiceLifecycle(t *testing.T) {
	a := openTestApp(t)
	ctx := context.Background()
	require.NoError(t, a.SettingsService.SetRate(ctx, "Tandem", 45))
	require.NoError(t, a.SettingsService.SetRate(ctx, "Video", 30))

	j1 := addJump(t, a, "Perris", "Tandem", "Video")
	j2 := addJump(t, a, "Perris", "Tandem")

	res, err := a.InvoiceService.CreateOrReview(ctx, "Perris", []string{j1.ID, j2.ID})
	require.NoError(t, err)
	require.True(t, res.Created)
	assert.Equal(t, 1001, res.Invoice.InvoiceNumber)
	assert.Equal(t, 120.0, res.Invoice.Total)

	// a second draft for the dropzone is refused
	again, err := a.InvoiceService.CreateOrReview(ctx, "Perris", []string{j1.ID})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.Invoice.ID, again.Invoice.ID)

	_, err = a.InvoiceService.Lock(ctx, res.Invoice.ID)
	require.NoError(t, err)
	_, err = a.InvoiceService.Send(ctx, res.Invoice.ID)
	require.NoError(t, err)

	stored, err := a.JumpService.Get(ctx, j1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JumpSent, stored.InvoiceStatus)
	assert.Equal(t, []string{"Tandem", "Video"}, stored.InvoicedServices)
	assert.Empty(t, stored.PendingInvoiceServices)
	assert.Equal(t, []domain.ServiceRate{{Service: "Tandem", Rate: 45}, {Service: "Video", Rate: 30}}, stored.RateAtTimeOfJump)

	_, err = a.InvoiceService.Reopen(ctx, res.Invoice.ID)
	require.NoError(t, err)
	stored, err = a.JumpService.Get(ctx, j1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JumpDraft, stored.InvoiceStatus)
	assert.Equal(t, []string{"Tandem", "Video"}, stored.PendingInvoiceServices)

	require.NoError(t, a.InvoiceService.DeleteOpen(ctx, res.Invoice.ID))
	stored, err = a.JumpService.Get(ctx, j1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JumpUnbilled, stored.InvoiceStatus)
	assert.Empty(t, stored.InvoiceIDs)

	history, err := a.InvoiceService.History(ctx, res.Invoice.ID)
	require.NoError(t, err)
	assert.Len(t, history, 5)

	// the deleted invoice number is free again
	next, err := a.InvoiceService.CreateOrReview(ctx, "Perris", []string{j1.ID, j2.ID})
	require.NoError(t, err)
	assert.Equal(t, 1001, next.Invoice.InvoiceNumber)
	require.Len(t, next.Invoice.Items, 3)
	assert.Equal(t, "Tandem", next.Invoice.Items[0].Service)
	assert.Equal(t, "Video", next.Invoice.Items[1].Service)
}

func TestSQLStore_BackupRoundTrip(t *testing.T) {
	src := openTestApp(t)
	ctx := context.Background()
	require.NoError(t, src.SettingsService.SetRate(ctx, "Tandem", 45))
	j := addJump(t, src, "Elsinore", "Tandem")
	res, err := src.InvoiceService.CreateOrReview(ctx, "Elsinore", []string{j.ID})
	require.NoError(t, err)
	_, err = src.InvoiceService.Lock(ctx, res.Invoice.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = src.BackupService.Export(ctx, &buf)
	require.NoError(t, err)

	dst := openTestApp(t)
	addJump(t, dst, "Other", "Tandem")
	_, err = dst.BackupService.Restore(ctx, &buf, service.RestoreOptions{})
	require.NoError(t, err)

	jumps, err := dst.JumpService.List(ctx, repository.JumpFilter{})
	require.NoError(t, err)
	require.Len(t, jumps, 1)
	assert.Equal(t, domain.JumpLocked, jumps[0].InvoiceStatus)

	inv, err := dst.InvoiceService.Get(ctx, "#1001")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusLocked, inv.Status)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, j.ID, inv.Items[0].JumpID)

	history, err := dst.InvoiceService.History(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "lock", history[1].Action)
}

func TestSQLStore_FailedTransitionRollsBack(t *testing.T) {
	a := openTestApp(t)
	ctx := context.Background()
	j := addJump(t, a, "Perris", "Coach")

	res, err := a.InvoiceService.CreateOrReview(ctx, "Perris", []string{j.ID})
	require.NoError(t, err)

	_, err = a.InvoiceService.MarkPaid(ctx, res.Invoice.ID)
	require.ErrorIs(t, err, billing.ErrInvalidTransition)

	inv, err := a.InvoiceService.Get(ctx, res.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.Nil(t, inv.DatePaid)
}

func TestReset(t *testing.T) {
	a := openTestApp(t)
	ctx := context.Background()
	addJump(t, a, "Perris", "Coach")
	require.NoError(t, a.JumpService.SetCurrentJumpNumber(ctx, 500))

	require.NoError(t, a.Reset(ctx))

	jumps, err := a.JumpService.List(ctx, repository.JumpFilter{})
	require.NoError(t, err)
	assert.Empty(t, jumps)
	n, err := a.JumpService.NextJumpNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/andy/jumplog/internal/billing"
	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
	"github.com/andy/jumplog/internal/repository/memstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memstore.Store
	jumps    JumpService
	invoices InvoiceService
	settings SettingsService
	backup   BackupService
	reports  ReportService
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memstore.New(),
		now:   time.Date(2026, 7, 4, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	log := zerolog.Nop()

	f.jumps = NewJumpService(f.store, clock, log)
	f.invoices = NewInvoiceService(f.store, InvoiceOptions{StartingNumber: 1000, Clock: clock}, log)
	f.settings = NewSettingsService(f.store, clock, log)
	f.backup = NewBackupService(f.store, clock, log)
	f.reports = NewReportService(f.store)

	ctx := context.Background()
	require.NoError(t, f.settings.SetRate(ctx, "Tandem", 45))
	require.NoError(t, f.settings.SetRate(ctx, "Video", 30))
	require.NoError(t, f.settings.SetRate(ctx, "Coach", 25))
	return f
}

func (f *fixture) addWorkJump(t *testing.T, dz string, services ...string) *domain.Jump {
	t.Helper()
	j := &domain.Jump{
		Date:         f.now,
		DropZone:     dz,
		WorkJump:     true,
		CustomerName: "Sam Student",
		InvoiceItems: services,
	}
	saved, err := f.jumps.Save(context.Background(), j, "")
	require.NoError(t, err)
	return saved
}

func (f *fixture) jump(t *testing.T, id string) *domain.Jump {
	t.Helper()
	j, err := f.jumps.Get(context.Background(), id)
	require.NoError(t, err)
	return j
}

// assertConsistent loads the stored state and checks the billing invariants
func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	var state billing.State
	err := f.store.WithTx(context.Background(), func(tx repository.Store) error {
		var err error
		state, err = loadState(context.Background(), tx)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, billing.CheckInvariants(state))
}

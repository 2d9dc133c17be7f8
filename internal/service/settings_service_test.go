package service

import (
	"context"
	"testing"

	"github.com/andy/jumplog/internal/domain"
	"github.com/andy/jumplog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_Rates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.settings.SetRate(ctx, " Tandem ", 50))
	require.NoError(t, f.settings.DeleteRate(ctx, "Coach"))

	rates, err := f.settings.ListRates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ServiceRate{
		{Service: "Tandem", Rate: 50},
		{Service: "Video", Rate: 30},
	}, rates)

	err = f.settings.SetRate(ctx, "Tandem", -1)
	var fields domain.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "Rate")
}

func TestSettingsService_RateChangeKeepsSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	old := f.addWorkJump(t, "DZ", "Tandem")

	require.NoError(t, f.settings.SetRate(ctx, "Tandem", 60))
	fresh := f.addWorkJump(t, "DZ", "Tandem")

	res, err := f.invoices.CreateOrReview(ctx, "DZ", []string{old.ID, fresh.ID})
	require.NoError(t, err)
	require.Len(t, res.Invoice.Items, 2)
	assert.Equal(t, 45.0, res.Invoice.Items[0].Rate)
	assert.Equal(t, 60.0, res.Invoice.Items[1].Rate)
	assert.Equal(t, 105.0, res.Invoice.Total)
}

func TestSettingsService_AddName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, f.settings.AddName(ctx, domain.RegistryAircraft, "  "), ErrEmptyName)
	require.NoError(t, f.settings.AddName(ctx, domain.RegistryAircraft, "King Air"))
	require.NoError(t, f.settings.AddName(ctx, domain.RegistryAircraft, "King Air"))

	names, err := f.settings.ListNames(ctx, domain.RegistryAircraft)
	require.NoError(t, err)
	assert.Equal(t, []string{"King Air"}, names)
}

func TestSettingsService_RenameDropZone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j1 := f.addWorkJump(t, "Perris", "Tandem")
	j2 := f.addWorkJump(t, "Perris", "Video")
	other := f.addWorkJump(t, "Elsinore", "Coach")

	res, err := f.invoices.CreateOrReview(ctx, "Perris", []string{j1.ID})
	require.NoError(t, err)

	n, err := f.settings.RenameName(ctx, domain.RegistryDropZone, "Perris", "Skydive Perris")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, "Skydive Perris", f.jump(t, j1.ID).DropZone)
	assert.Equal(t, "Skydive Perris", f.jump(t, j2.ID).DropZone)
	assert.Equal(t, "Elsinore", f.jump(t, other.ID).DropZone)

	names, err := f.settings.ListNames(ctx, domain.RegistryDropZone)
	require.NoError(t, err)
	assert.Equal(t, []string{"Elsinore", "Skydive Perris"}, names)

	inv, err := f.invoices.Get(ctx, res.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Perris", inv.DropZone)
}

func TestSettingsService_RenameMerges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addWorkJump(t, "Perris", "Tandem")
	f.addWorkJump(t, "Skydive Perris", "Tandem")

	n, err := f.settings.RenameName(ctx, domain.RegistryDropZone, "Perris", "Skydive Perris")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	names, err := f.settings.ListNames(ctx, domain.RegistryDropZone)
	require.NoError(t, err)
	assert.Equal(t, []string{"Skydive Perris"}, names)

	jumps, err := f.jumps.List(ctx, repository.JumpFilter{DropZone: "Skydive Perris"})
	require.NoError(t, err)
	assert.Len(t, jumps, 2)
}

func TestSettingsService_RenameErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.settings.RenameName(ctx, domain.RegistryDropZone, "Nowhere", "Somewhere")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.settings.RenameName(ctx, domain.RegistryDropZone, "", "Somewhere")
	require.ErrorIs(t, err, ErrEmptyName)

	n, err := f.settings.RenameName(ctx, domain.RegistryDropZone, "Same", "Same")
	require.NoError(t, err)
	assert.Zero(t, n)
}

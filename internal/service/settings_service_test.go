package service

import (
	"context"
	"testing"

	"otka-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsService(t *testing.T) SettingsService {
	t.Helper()
	db := newTestDB(t)
	return NewSettingsService(
		repository.NewSettingsRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
	)
}

func TestGetSeedsSingletonDefaults(t *testing.T) {
	svc := newSettingsService(t)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint(1), settings.ID)
	assert.Equal(t, "OTK", settings.ProformaSeries)
	assert.Equal(t, int64(0), settings.ProformaCounter)
	assert.NotEmpty(t, settings.CompanyName)
}

func TestUpdatePatchesOnlyProvidedFields(t *testing.T) {
	svc := newSettingsService(t)
	ctx := context.Background()

	before, err := svc.Get(ctx)
	require.NoError(t, err)

	city := "Cluj-Napoca"
	updated, err := svc.Update(ctx, UpdateSettingsRequest{City: &city}, "")
	require.NoError(t, err)

	assert.Equal(t, "Cluj-Napoca", updated.City)
	assert.Equal(t, before.CompanyName, updated.CompanyName)
	assert.Equal(t, before.ProformaSeries, updated.ProformaSeries)
}

func TestUpdateRejectsEmptyIdentityFields(t *testing.T) {
	svc := newSettingsService(t)
	ctx := context.Background()

	empty := ""
	_, err := svc.Update(ctx, UpdateSettingsRequest{CompanyName: &empty}, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Update(ctx, UpdateSettingsRequest{ProformaSeries: &empty}, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCounterOnlyMovesForward(t *testing.T) {
	svc := newSettingsService(t)
	ctx := context.Background()

	forward := int64(100)
	updated, err := svc.Update(ctx, UpdateSettingsRequest{ProformaCounter: &forward}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), updated.ProformaCounter)

	backward := int64(50)
	_, err = svc.Update(ctx, UpdateSettingsRequest{ProformaCounter: &backward}, "")
	assert.ErrorIs(t, err, ErrValidation)

	current, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), current.ProformaCounter)
}

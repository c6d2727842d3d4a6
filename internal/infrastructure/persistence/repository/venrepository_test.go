package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"openadr/internal/domain/storage"
	"openadr/internal/infrastructure/persistence/models"
	apperrors "openadr/internal/shared/errors"
	"openadr/internal/shared/logger"
	"openadr/internal/wire"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "vens.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.VenModel{}, &models.ResourceModel{}))
	return db
}

func blVen(clientID, venName string, targets ...wire.Target) wire.VenRequest {
	return wire.VenRequest{BL: &wire.BLVenRequest{
		ClientID: clientID,
		VenName:  venName,
		Targets:  targets,
	}}
}

func TestVenWritesOpenByDefault(t *testing.T) {
	store := NewVenRepository(newTestDB(t), logger.NewLogger())
	ctx := context.Background()

	created, err := store.Create(ctx, blVen("client-a", "ven-a", "GROUP:g1"), storage.BLOwner)
	require.NoError(t, err)

	// Any caller holding the write scope may rename the VEN, but the
	// owner and targets stay untouched.
	rename := wire.VenRequest{Ven: &wire.VenVenRequest{VenName: "ven-a-renamed"}}
	updated, err := store.Update(ctx, created.ID, rename, storage.OwnerFor("client-b"))
	require.NoError(t, err)
	assert.Equal(t, "ven-a-renamed", updated.VenName)
	assert.Equal(t, "client-a", updated.ClientID)
	assert.Equal(t, []wire.Target{"GROUP:g1"}, updated.Targets)

	// Reads keep the owner filter regardless of the write policy.
	_, err = store.Retrieve(ctx, created.ID, storage.OwnerFor("client-b"))
	assert.True(t, apperrors.IsNotFoundError(err))

	_, err = store.Delete(ctx, created.ID, storage.OwnerFor("client-b"))
	require.NoError(t, err)

	_, err = store.Retrieve(ctx, created.ID, storage.BLOwner)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestOwnerVenWritePolicyHidesForeignVens(t *testing.T) {
	store := NewVenRepositoryWithPolicy(newTestDB(t), AllowOwnerVenWrites, logger.NewLogger())
	ctx := context.Background()

	created, err := store.Create(ctx, blVen("client-a", "ven-a"), storage.BLOwner)
	require.NoError(t, err)

	rename := wire.VenRequest{Ven: &wire.VenVenRequest{VenName: "taken-over"}}

	_, err = store.Update(ctx, created.ID, rename, storage.OwnerFor("client-b"))
	assert.True(t, apperrors.IsNotFoundError(err), "foreign write should look like a missing ven")
	_, err = store.Delete(ctx, created.ID, storage.OwnerFor("client-b"))
	assert.True(t, apperrors.IsNotFoundError(err))

	updated, err := store.Update(ctx, created.ID, rename, storage.OwnerFor("client-a"))
	require.NoError(t, err)
	assert.Equal(t, "taken-over", updated.VenName)

	_, err = store.Delete(ctx, created.ID, storage.BLOwner)
	require.NoError(t, err)
}

func TestVenWritePolicyFor(t *testing.T) {
	perm := storage.OwnerFor("client-a")

	assert.True(t, VenWritePolicyFor("open")(perm, "client-b"))
	assert.True(t, VenWritePolicyFor("")(perm, "client-b"))
	assert.False(t, VenWritePolicyFor("owner")(perm, "client-b"))
	assert.True(t, VenWritePolicyFor("owner")(perm, "client-a"))
	assert.True(t, VenWritePolicyFor("owner")(storage.BLOwner, "client-b"))
}

func TestVenCreateRules(t *testing.T) {
	store := NewVenRepository(newTestDB(t), logger.NewLogger())
	ctx := context.Background()

	_, err := store.Create(ctx, blVen("client-a", "ven-a"), storage.OwnerFor("client-a"))
	assert.True(t, apperrors.IsForbiddenError(err), "BL variant needs a business logic scope")

	created, err := store.Create(ctx, wire.VenRequest{Ven: &wire.VenVenRequest{VenName: "ven-a"}}, storage.OwnerFor("client-a"))
	require.NoError(t, err)
	assert.Equal(t, "client-a", created.ClientID, "client ID comes from the token")

	_, err = store.Create(ctx, blVen("client-b", "ven-a"), storage.BLOwner)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestVenUpdateKeepsClientIDImmutable(t *testing.T) {
	store := NewVenRepository(newTestDB(t), logger.NewLogger())
	ctx := context.Background()

	created, err := store.Create(ctx, blVen("client-a", "ven-a"), storage.BLOwner)
	require.NoError(t, err)

	_, err = store.Update(ctx, created.ID, blVen("client-b", "ven-a"), storage.BLOwner)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestVenDeleteConflictsWhileResourcesAttached(t *testing.T) {
	db := newTestDB(t)
	vens := NewVenRepository(db, logger.NewLogger())
	resources := NewResourceRepository(db, logger.NewLogger())
	ctx := context.Background()

	ven, err := vens.Create(ctx, blVen("client-a", "ven-a"), storage.BLOwner)
	require.NoError(t, err)

	owner := storage.OwnerFor("client-a")
	res, err := resources.Create(ctx, ven.ID, wire.ResourceRequest{Ven: &wire.VenResourceRequest{ResourceName: "meter-1"}}, owner)
	require.NoError(t, err)

	_, err = vens.Delete(ctx, ven.ID, storage.BLOwner)
	assert.True(t, apperrors.IsConflictError(err))

	_, err = resources.Delete(ctx, ven.ID, res.ID, owner)
	require.NoError(t, err)
	_, err = vens.Delete(ctx, ven.ID, storage.BLOwner)
	require.NoError(t, err)
}

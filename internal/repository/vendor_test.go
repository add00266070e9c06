package repository

import (
	"context"
	"testing"

	"hackit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorRepository_SaveProfileKeepsOtherSteps(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVendorRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveProfile(ctx, &models.VendorProfile{UserID: "v1", Language: "tl", Path: "existing"}, "language", "path"))
	require.NoError(t, repo.SaveProfile(ctx, &models.VendorProfile{UserID: "v1", StoreName: "Aling Nena", StoreType: "sari-sari"}, "store_name", "store_type"))

	vp, err := repo.GetProfile(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "tl", vp.Language)
	assert.Equal(t, "existing", vp.Path)
	assert.Equal(t, "Aling Nena", vp.StoreName)
	assert.Equal(t, "sari-sari", vp.StoreType)

	_, err = repo.GetProfile(ctx, "v2")
	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestVendorRepository_Inventory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVendorRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddInventory(ctx,
		&models.InventoryItem{UserID: "v1", Name: "Fishball", Pcs: 100, Cost: 0.5, Price: 1},
		&models.InventoryItem{UserID: "v1", Name: "Kwek-Kwek", Pcs: 50, Cost: 1, Price: 2},
		&models.InventoryItem{UserID: "v2", Name: "Gulay", Pcs: 30, Cost: 5, Price: 10},
	))

	items, err := repo.ListInventory(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Fishball", items[0].Name)
	assert.InDelta(t, 50.0, items[0].Total(), 0.0001)

	// Someone else's item is not deletable.
	others, err := repo.ListInventory(ctx, "v2")
	require.NoError(t, err)
	require.Len(t, others, 1)
	err = repo.DeleteInventory(ctx, "v1", others[0].ID)
	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	require.NoError(t, repo.DeleteInventory(ctx, "v1", items[0].ID))
	items, err = repo.ListInventory(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Kwek-Kwek", items[0].Name)

	require.NoError(t, repo.AddInventory(ctx))
}

package service

import (
	"context"
	"testing"

	"hackit/internal/models"
	"hackit/internal/onboarding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVendorService(t *testing.T) (*VendorService, *memVendorRepo) {
	t.Helper()
	catalog, err := onboarding.Load()
	require.NoError(t, err)
	repo := newMemVendorRepo()
	return NewVendorService(repo, catalog), repo
}

func TestVendorService_PathCopy(t *testing.T) {
	t.Parallel()

	svc, _ := newVendorService(t)
	assert.Len(t, svc.Languages(), 3)

	copyTL, err := svc.PathCopy("TL")
	require.NoError(t, err)
	assert.Equal(t, "May negosyo na ako", copyTL.Option1)

	_, err = svc.PathCopy("fr")
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestVendorService_ChoosePath(t *testing.T) {
	t.Parallel()

	svc, repo := newVendorService(t)
	ctx := context.Background()

	route, err := svc.ChoosePath(ctx, ChoosePathInput{UserID: "v1", Language: "ceb", Option: "option2"})
	require.NoError(t, err)
	assert.Equal(t, "start", route)

	vp, err := repo.GetProfile(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "ceb", vp.Language)
	assert.Equal(t, "start", vp.Path)

	_, err = svc.ChoosePath(ctx, ChoosePathInput{UserID: "v1", Language: "en", Option: "option3"})
	assertAppErrorCode(t, err, models.CodeValidation)
	_, err = svc.ChoosePath(ctx, ChoosePathInput{UserID: "v1", Language: "xx", Option: "option1"})
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestVendorService_SaveVendor(t *testing.T) {
	t.Parallel()

	svc, _ := newVendorService(t)
	ctx := context.Background()

	_, err := svc.ChoosePath(ctx, ChoosePathInput{UserID: "v1", Language: "en", Option: "option1"})
	require.NoError(t, err)

	vp, err := svc.SaveVendor(ctx, SaveVendorInput{UserID: "v1", StoreName: "  Aling Nena's  ", StoreType: "Sari-Sari"})
	require.NoError(t, err)
	assert.Equal(t, "Aling Nena's", vp.StoreName)
	assert.Equal(t, "sari-sari", vp.StoreType)
	assert.Equal(t, "existing", vp.Path)

	_, err = svc.SaveVendor(ctx, SaveVendorInput{UserID: "v1", StoreName: " ", StoreType: "bakery"})
	assertAppErrorCode(t, err, models.CodeValidation)
	_, err = svc.SaveVendor(ctx, SaveVendorInput{UserID: "v1", StoreName: "Shop", StoreType: "pharmacy"})
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestVendorService_Inventory_StarterOnFirstRead(t *testing.T) {
	t.Parallel()

	svc, repo := newVendorService(t)
	ctx := context.Background()

	view, err := svc.Inventory(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "Let's set you up!", view.Title)
	require.Len(t, view.Items, 3)
	assert.Equal(t, "Fishball", view.Items[0].Name)
	assert.InDelta(t, 50.0, view.Items[0].Total, 1e-9)
	assert.InDelta(t, 250.0, view.GrandTotal, 1e-9)

	again, err := svc.Inventory(ctx, "v1")
	require.NoError(t, err)
	assert.Len(t, again.Items, 3)
	assert.Len(t, repo.items, 3)
}

func TestVendorService_AddAndDeleteItem(t *testing.T) {
	t.Parallel()

	svc, _ := newVendorService(t)
	ctx := context.Background()

	_, err := svc.Inventory(ctx, "v1")
	require.NoError(t, err)

	line, err := svc.AddItem(ctx, AddItemInput{UserID: "v1", Name: " Turon ", Pcs: 20, Cost: 4, Price: 10})
	require.NoError(t, err)
	assert.Equal(t, "Turon", line.Name)
	assert.InDelta(t, 80.0, line.Total, 1e-9)

	view, err := svc.Inventory(ctx, "v1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 4)
	assert.InDelta(t, 330.0, view.GrandTotal, 1e-9)

	_, err = svc.AddItem(ctx, AddItemInput{UserID: "v1", Name: "Bad", Pcs: -1})
	assertAppErrorCode(t, err, models.CodeValidation)
	_, err = svc.AddItem(ctx, AddItemInput{UserID: "v1", Name: "", Pcs: 1})
	assertAppErrorCode(t, err, models.CodeValidation)

	require.NoError(t, svc.DeleteItem(ctx, "v1", line.ID))
	err = svc.DeleteItem(ctx, "someone-else", 1)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

package repository

import (
	"context"

	"hackit/internal/models"
	"hackit/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VendorRepository stores onboarding answers and the vendor's inventory.
type VendorRepository interface {
	GetProfile(ctx context.Context, userID string) (*models.VendorProfile, error)
	SaveProfile(ctx context.Context, profile *models.VendorProfile, columns ...string) error
	ListInventory(ctx context.Context, userID string) ([]*models.InventoryItem, error)
	AddInventory(ctx context.Context, items ...*models.InventoryItem) error
	DeleteInventory(ctx context.Context, userID string, id uint) error
}

type vendorRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewVendorRepository returns a new VendorRepository implementation.
func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db, log: observability.NewRepoLogger("vendor_profiles")}
}

func (r *vendorRepository) GetProfile(ctx context.Context, userID string) (*models.VendorProfile, error) {
	var vp models.VendorProfile
	if err := readDB(r.db).WithContext(ctx).First(&vp, "user_id = ?", userID).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Vendor profile", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return &vp, nil
}

// SaveProfile upserts the vendor profile. When columns are given only those are
// overwritten on conflict, so each onboarding step keeps the answers of the others.
func (r *vendorRepository) SaveProfile(ctx context.Context, profile *models.VendorProfile, columns ...string) error {
	if len(columns) == 0 {
		columns = []string{"language", "path", "store_name", "store_type"}
	}
	columns = append(columns, "updated_at")
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(profile).Error; err != nil {
		r.log.LogError(ctx, err, "save")
		return models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, "user_id", profile.UserID, "columns", columns)
	return nil
}

func (r *vendorRepository) ListInventory(ctx context.Context, userID string) ([]*models.InventoryItem, error) {
	var items []*models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *vendorRepository) AddInventory(ctx context.Context, items ...*models.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(items).Error; err != nil {
		r.log.LogError(ctx, err, "add_inventory")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, "user_id", items[0].UserID, "items", len(items))
	return nil
}

func (r *vendorRepository) DeleteInventory(ctx context.Context, userID string, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.InventoryItem{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Inventory item", id)
	}
	r.log.LogDelete(ctx, "user_id", userID, "item_id", id)
	return nil
}

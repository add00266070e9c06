package database

import "hackit/internal/models"

// PersistentModels lists every row type AutoMigrate manages, parents before
// children so foreign keys resolve on a fresh database.
func PersistentModels() []any {
	return []any{
		// accounts
		&models.User{}, &models.Profile{}, &models.DocUser{},
		// feed
		&models.Post{}, &models.PostImage{}, &models.Like{}, &models.Comment{},
		&models.Notification{},
		// onboarding
		&models.VendorProfile{}, &models.InventoryItem{},
	}
}

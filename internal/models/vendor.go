package models

import "time"

// VendorProfile captures the mobile onboarding answers of a vendor.
type VendorProfile struct {
	UserID    string    `gorm:"primaryKey;size:128" json:"user_id"`
	Language  string    `gorm:"size:8" json:"language"`
	Path      string    `gorm:"size:16" json:"path"`
	StoreName string    `json:"store_name"`
	StoreType string    `gorm:"size:32" json:"store_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (VendorProfile) TableName() string {
	return "vendor_profiles"
}

// InventoryItem is a product line in a vendor's starting inventory.
type InventoryItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:128;not null;index" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Pcs       int       `gorm:"not null;default:0" json:"pcs"`
	Cost      float64   `gorm:"not null;default:0" json:"cost"`
	Price     float64   `gorm:"not null;default:0" json:"price"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// Total is the stock value at cost.
func (i InventoryItem) Total() float64 {
	return float64(i.Pcs) * i.Cost
}

package service

import (
	"context"
	"strings"

	"hackit/internal/models"
	"hackit/internal/onboarding"
	"hackit/internal/repository"
	"hackit/internal/validation"
)

type VendorService struct {
	repo    repository.VendorRepository
	catalog *onboarding.Catalog
}

// InventoryLine is an inventory item with its stock value.
type InventoryLine struct {
	*models.InventoryItem
	Total float64 `json:"total"`
}

// InventoryView is the inventory page payload.
type InventoryView struct {
	Title      string           `json:"title"`
	Subheading string           `json:"subheading"`
	Items      []*InventoryLine `json:"items"`
	GrandTotal float64          `json:"grand_total"`
}

type ChoosePathInput struct {
	UserID   string
	Language string
	Option   string
}

type SaveVendorInput struct {
	UserID    string
	StoreName string
	StoreType string
}

type AddItemInput struct {
	UserID string
	Name   string
	Pcs    int
	Cost   float64
	Price  float64
	Image  string
}

func NewVendorService(repo repository.VendorRepository, catalog *onboarding.Catalog) *VendorService {
	return &VendorService{repo: repo, catalog: catalog}
}

func (s *VendorService) Languages() []onboarding.Language {
	return s.catalog.Languages
}

// PathCopy returns the path page copy for a language code.
func (s *VendorService) PathCopy(code string) (onboarding.PathCopy, error) {
	lang, ok := s.catalog.Language(code)
	if !ok {
		return onboarding.PathCopy{}, models.NewNotFoundError("Language", code)
	}
	return lang.Path, nil
}

func (s *VendorService) StoreTypes() []onboarding.StoreType {
	return s.catalog.StoreTypes
}

func (s *VendorService) VendorCopy() onboarding.VendorCopy {
	return s.catalog.Vendor
}

// ChoosePath records the language and business path and returns the next route.
func (s *VendorService) ChoosePath(ctx context.Context, in ChoosePathInput) (string, error) {
	lang, ok := s.catalog.Language(in.Language)
	if !ok {
		return "", models.NewValidationError("Unknown language")
	}
	opt, ok := s.catalog.Route(in.Option)
	if !ok {
		return "", models.NewValidationError("Unknown path option")
	}
	vp := &models.VendorProfile{UserID: in.UserID, Language: lang.Code, Path: opt.Route}
	if err := s.repo.SaveProfile(ctx, vp, "language", "path"); err != nil {
		return "", err
	}
	return opt.Route, nil
}

// SaveVendor records the store details.
func (s *VendorService) SaveVendor(ctx context.Context, in SaveVendorInput) (*models.VendorProfile, error) {
	name, err := validation.StoreName(in.StoreName)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	storeType := strings.ToLower(strings.TrimSpace(in.StoreType))
	if _, ok := s.catalog.StoreType(storeType); !ok {
		return nil, models.NewValidationError("Unknown store type")
	}
	vp := &models.VendorProfile{UserID: in.UserID, StoreName: name, StoreType: storeType}
	if err := s.repo.SaveProfile(ctx, vp, "store_name", "store_type"); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, in.UserID)
}

func (s *VendorService) GetVendor(ctx context.Context, userID string) (*models.VendorProfile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// Inventory returns the caller's items, copying the starter products in when
// the inventory is empty.
func (s *VendorService) Inventory(ctx context.Context, userID string) (*InventoryView, error) {
	items, err := s.repo.ListInventory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 && len(s.catalog.Inventory.Starter) > 0 {
		starter := make([]*models.InventoryItem, 0, len(s.catalog.Inventory.Starter))
		for _, it := range s.catalog.Inventory.Starter {
			starter = append(starter, &models.InventoryItem{
				UserID: userID,
				Name:   it.Name,
				Pcs:    it.Pcs,
				Cost:   it.Cost,
				Price:  it.Price,
				Image:  it.Image,
			})
		}
		if err := s.repo.AddInventory(ctx, starter...); err != nil {
			return nil, err
		}
		items = starter
	}

	view := &InventoryView{
		Title:      s.catalog.Inventory.Title,
		Subheading: s.catalog.Inventory.Subheading,
		Items:      make([]*InventoryLine, 0, len(items)),
	}
	for _, it := range items {
		line := &InventoryLine{InventoryItem: it, Total: it.Total()}
		view.GrandTotal += line.Total
		view.Items = append(view.Items, line)
	}
	return view, nil
}

// AddItem appends a product to the caller's inventory.
func (s *VendorService) AddItem(ctx context.Context, in AddItemInput) (*InventoryLine, error) {
	name, err := validation.InventoryItem(in.Name, in.Pcs, in.Cost, in.Price)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	item := &models.InventoryItem{
		UserID: in.UserID,
		Name:   name,
		Pcs:    in.Pcs,
		Cost:   in.Cost,
		Price:  in.Price,
		Image:  strings.TrimSpace(in.Image),
	}
	if err := s.repo.AddInventory(ctx, item); err != nil {
		return nil, err
	}
	return &InventoryLine{InventoryItem: item, Total: item.Total()}, nil
}

func (s *VendorService) DeleteItem(ctx context.Context, userID string, id uint) error {
	return s.repo.DeleteInventory(ctx, userID, id)
}

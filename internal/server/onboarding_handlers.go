package server

import (
	"hackit/internal/middleware"
	"hackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetLanguages handles GET /api/onboarding/languages
func (s *Server) GetLanguages(c *fiber.Ctx) error {
	return c.JSON(s.vendorService.Languages())
}

// GetPathCopy handles GET /api/onboarding/languages/:code/path
func (s *Server) GetPathCopy(c *fiber.Ctx) error {
	pathCopy, err := s.vendorService.PathCopy(c.Params("code"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(pathCopy)
}

// GetStoreTypes handles GET /api/onboarding/store-types
func (s *Server) GetStoreTypes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"store_types": s.vendorService.StoreTypes(),
		"copy":        s.vendorService.VendorCopy(),
	})
}

// ChoosePath handles PUT /api/onboarding/path
// @Summary Choose the business path
// @Tags onboarding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{language=string,option=string} true "Selection"
// @Success 200 {object} object{route=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /onboarding/path [put]
func (s *Server) ChoosePath(c *fiber.Ctx) error {
	var req struct {
		Language string `json:"language"`
		Option   string `json:"option"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	route, err := s.vendorService.ChoosePath(c.UserContext(), service.ChoosePathInput{
		UserID:   middleware.UserID(c),
		Language: req.Language,
		Option:   req.Option,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"route": route})
}

// GetVendor handles GET /api/onboarding/vendor
func (s *Server) GetVendor(c *fiber.Ctx) error {
	vendor, err := s.vendorService.GetVendor(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(vendor)
}

// SaveVendor handles PUT /api/onboarding/vendor
func (s *Server) SaveVendor(c *fiber.Ctx) error {
	var req struct {
		StoreName string `json:"store_name"`
		StoreType string `json:"store_type"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	vendor, err := s.vendorService.SaveVendor(c.UserContext(), service.SaveVendorInput{
		UserID:    middleware.UserID(c),
		StoreName: req.StoreName,
		StoreType: req.StoreType,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(vendor)
}

// GetInventory handles GET /api/onboarding/inventory
// @Summary Inventory with totals
// @Description An empty inventory is filled with the starter products
// @Tags onboarding
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.InventoryView
// @Router /onboarding/inventory [get]
func (s *Server) GetInventory(c *fiber.Ctx) error {
	view, err := s.vendorService.Inventory(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(view)
}

// AddInventoryItem handles POST /api/onboarding/inventory
func (s *Server) AddInventoryItem(c *fiber.Ctx) error {
	var req struct {
		Name  string  `json:"name"`
		Pcs   int     `json:"pcs"`
		Cost  float64 `json:"cost"`
		Price float64 `json:"price"`
		Image string  `json:"image"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	line, err := s.vendorService.AddItem(c.UserContext(), service.AddItemInput{
		UserID: middleware.UserID(c),
		Name:   req.Name,
		Pcs:    req.Pcs,
		Cost:   req.Cost,
		Price:  req.Price,
		Image:  req.Image,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(line)
}

// DeleteInventoryItem handles DELETE /api/onboarding/inventory/:id
func (s *Server) DeleteInventoryItem(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.vendorService.DeleteItem(c.UserContext(), middleware.UserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

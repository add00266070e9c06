package validation

import (
	"errors"
	"math"
	"strings"
)

var (
	ErrStoreNameRequired = errors.New("Store name is required")
	ErrItemNameRequired  = errors.New("Product name is required")
	ErrNegativeQuantity  = errors.New("Pieces, cost and price must not be negative")
)

// StoreName trims and requires a store name.
func StoreName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrStoreNameRequired
	}
	return name, nil
}

// InventoryItem trims the name and rejects negative or non-finite amounts.
func InventoryItem(name string, pcs int, cost, price float64) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrItemNameRequired
	}
	if pcs < 0 || !nonNegative(cost) || !nonNegative(price) {
		return "", ErrNegativeQuantity
	}
	return name, nil
}

func nonNegative(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

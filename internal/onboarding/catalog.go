// Package onboarding serves the copy, store types and starter inventory of the
// vendor onboarding flow from an embedded YAML catalog.
package onboarding

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// PathCopy is the "choose your path" page in one language.
type PathCopy struct {
	Title   string `yaml:"title" json:"title"`
	Option1 string `yaml:"option1" json:"option1"`
	Option2 string `yaml:"option2" json:"option2"`
	Confirm string `yaml:"confirm" json:"confirm"`
}

// Language is a selectable UI language with its language page copy.
type Language struct {
	Code    string   `yaml:"code" json:"code"`
	Name    string   `yaml:"name" json:"name"`
	Title   string   `yaml:"title" json:"title"`
	Confirm string   `yaml:"confirm" json:"confirm"`
	Path    PathCopy `yaml:"path" json:"-"`
}

// PathOption maps a path choice to the next screen.
type PathOption struct {
	Route string `yaml:"route" json:"route"`
	Image string `yaml:"image" json:"image"`
}

// VendorCopy is the store details page copy.
type VendorCopy struct {
	Title                string `yaml:"title" json:"title"`
	StoreNameLabel       string `yaml:"store_name_label" json:"store_name_label"`
	StoreNamePlaceholder string `yaml:"store_name_placeholder" json:"store_name_placeholder"`
	StorePrompt          string `yaml:"store_prompt" json:"store_prompt"`
	Confirm              string `yaml:"confirm" json:"confirm"`
}

// StoreType is one of the selectable kinds of store.
type StoreType struct {
	Code  string `yaml:"code" json:"code"`
	Image string `yaml:"image" json:"image"`
}

// StarterItem is a product pre-filled into a new vendor's inventory.
type StarterItem struct {
	Name  string  `yaml:"name" json:"name"`
	Pcs   int     `yaml:"pcs" json:"pcs"`
	Cost  float64 `yaml:"cost" json:"cost"`
	Price float64 `yaml:"price" json:"price"`
	Image string  `yaml:"image" json:"image"`
}

// InventoryCopy is the inventory page copy plus the starter products.
type InventoryCopy struct {
	Title      string        `yaml:"title" json:"title"`
	Subheading string        `yaml:"subheading" json:"subheading"`
	Starter    []StarterItem `yaml:"starter" json:"-"`
}

// Catalog is the whole onboarding content.
type Catalog struct {
	Languages  []Language            `yaml:"languages"`
	Paths      map[string]PathOption `yaml:"paths"`
	Vendor     VendorCopy            `yaml:"vendor"`
	StoreTypes []StoreType           `yaml:"store_types"`
	Inventory  InventoryCopy         `yaml:"inventory"`
}

// Load returns the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse onboarding catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every language has complete copy and that both path
// options and at least one store type exist.
func (c *Catalog) Validate() error {
	var errs []error
	if len(c.Languages) == 0 {
		errs = append(errs, errors.New("no languages"))
	}
	seen := map[string]bool{}
	for _, l := range c.Languages {
		if l.Code == "" {
			errs = append(errs, errors.New("language without code"))
			continue
		}
		if seen[l.Code] {
			errs = append(errs, fmt.Errorf("duplicate language %q", l.Code))
		}
		seen[l.Code] = true
		if l.Title == "" || l.Confirm == "" || l.Path.Title == "" || l.Path.Option1 == "" || l.Path.Option2 == "" || l.Path.Confirm == "" {
			errs = append(errs, fmt.Errorf("language %q has missing copy", l.Code))
		}
	}
	for _, opt := range []string{"option1", "option2"} {
		if c.Paths[opt].Route == "" {
			errs = append(errs, fmt.Errorf("path %s has no route", opt))
		}
	}
	if len(c.StoreTypes) == 0 {
		errs = append(errs, errors.New("no store types"))
	}
	for _, it := range c.Inventory.Starter {
		if strings.TrimSpace(it.Name) == "" || it.Pcs < 0 || it.Cost < 0 || it.Price < 0 {
			errs = append(errs, fmt.Errorf("invalid starter item %q", it.Name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid onboarding catalog: %w", errors.Join(errs...))
	}
	return nil
}

// Language looks up a language by code, case-insensitively.
func (c *Catalog) Language(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range c.Languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// Route resolves a path option ("option1" or "option2") to its route.
func (c *Catalog) Route(option string) (PathOption, bool) {
	p, ok := c.Paths[strings.TrimSpace(option)]
	return p, ok && p.Route != ""
}

// StoreType looks up a store type by code.
func (c *Catalog) StoreType(code string) (StoreType, bool) {
	for _, st := range c.StoreTypes {
		if st.Code == code {
			return st, true
		}
	}
	return StoreType{}, false
}

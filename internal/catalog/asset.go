// Package catalog describes the light and decor assets a design can place.
package catalog

import (
	"image/color"
	"sort"
)

// Category groups assets by the entity kind they are placed as.
type Category string

const (
	CategoryString   Category = "string"
	CategorySingular Category = "singular"
	CategoryDecor    Category = "decor"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryString, CategorySingular, CategoryDecor:
		return true
	}
	return false
}

// Asset is one catalog entry. Calibrated assets derive their spacing from
// the reference scale; custom-style assets use SpacingPixels as is.
type Asset struct {
	ID       string
	Name     string
	Category Category

	SpacingInches  float64
	SpacingPixels  float64
	DiameterInches float64
	// BaseSize is the on-screen light diameter in pixels at scale 1.
	BaseSize float64
	Color    color.RGBA

	Calibrated bool
}

// Default returns an asset with the stock sizes, used as the starting point
// when parsing a definition.
func Default(id string) Asset {
	return Asset{
		ID:             id,
		Name:           id,
		Category:       CategoryString,
		SpacingInches:  12,
		SpacingPixels:  36,
		DiameterInches: 1,
		BaseSize:       8,
		Color:          color.RGBA{255, 214, 140, 255},
		Calibrated:     true,
	}
}

// Catalog looks assets up by id.
type Catalog interface {
	AssetByID(id string) (Asset, bool)
}

// Set is an in-memory Catalog that keeps assets in definition order.
type Set struct {
	order  []string
	assets map[string]Asset
}

// NewSet returns a Set holding assets. Later duplicates replace earlier ones.
func NewSet(assets ...Asset) *Set {
	s := &Set{assets: make(map[string]Asset)}
	for _, a := range assets {
		s.Put(a)
	}
	return s
}

// Put adds or replaces a.
func (s *Set) Put(a Asset) {
	if _, ok := s.assets[a.ID]; !ok {
		s.order = append(s.order, a.ID)
	}
	s.assets[a.ID] = a
}

// AssetByID implements Catalog.
func (s *Set) AssetByID(id string) (Asset, bool) {
	a, ok := s.assets[id]
	return a, ok
}

// Assets returns every asset in definition order.
func (s *Set) Assets() []Asset {
	out := make([]Asset, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.assets[id])
	}
	return out
}

// ByCategory returns the assets of category c sorted by name.
func (s *Set) ByCategory(c Category) []Asset {
	var out []Asset
	for _, a := range s.Assets() {
		if a.Category == c {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// First returns the first asset of category c in definition order.
func (s *Set) First(c Category) (Asset, bool) {
	for _, id := range s.order {
		if a := s.assets[id]; a.Category == c {
			return a, true
		}
	}
	return Asset{}, false
}

// Merge copies every asset of other into s.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for _, a := range other.Assets() {
		s.Put(a)
	}
}

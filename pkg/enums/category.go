package enums

import "fmt"

// Category represents the canonical inventory categories after alias resolution.
type Category string

const (
	CategoryShirt          Category = "Shirt"
	CategoryNo3Uniform     Category = "No 3 Uniform"
	CategoryNo4Uniform     Category = "No 4 Uniform"
	CategoryNo3Accessories Category = "No 3 Accessories"
	CategoryNo4Accessories Category = "No 4 Accessories"
)

var validCategories = []Category{
	CategoryShirt,
	CategoryNo3Uniform,
	CategoryNo4Uniform,
	CategoryNo3Accessories,
	CategoryNo4Accessories,
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Category.
func (c Category) IsValid() bool {
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategory converts raw input into a Category. Historical aliases are
// handled by the vocab normalizer, not here.
func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}

// IsAccessory reports whether the category holds accessory lines.
func (c Category) IsAccessory() bool {
	return c == CategoryNo3Accessories || c == CategoryNo4Accessories
}

// Generation identifies the uniform generation a category or type belongs to.
type Generation string

const (
	GenerationNo3 Generation = "No 3"
	GenerationNo4 Generation = "No 4"
)

// String implements fmt.Stringer.
func (g Generation) String() string {
	return string(g)
}

// Generation returns the uniform generation implied by the category, if any.
func (c Category) Generation() (Generation, bool) {
	switch c {
	case CategoryNo3Uniform, CategoryNo3Accessories:
		return GenerationNo3, true
	case CategoryNo4Uniform, CategoryNo4Accessories:
		return GenerationNo4, true
	}
	return "", false
}

// AccessoryCategoryFor returns the accessory category for a generation.
func AccessoryCategoryFor(g Generation) Category {
	if g == GenerationNo3 {
		return CategoryNo3Accessories
	}
	return CategoryNo4Accessories
}

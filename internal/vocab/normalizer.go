package vocab

import (
	"fmt"
	"strings"

	"github.com/kitroom/kitroom-backend/pkg/enums"
	pkgerrors "github.com/kitroom/kitroom-backend/pkg/errors"
)

// aliasesByCanonical is the inverse of typeAliases, used by the inventory
// locator to match rows persisted under historical type names.
var aliasesByCanonical = buildAliasIndex()

func buildAliasIndex() map[string][]string {
	index := make(map[string][]string, len(typeAliases))
	for legacy, canonical := range typeAliases {
		index[canonical] = append(index[canonical], legacy)
	}
	return index
}

// ResolveCategory folds a raw category string, including historical aliases,
// to one of the five canonical categories.
func ResolveCategory(raw string) (enums.Category, error) {
	if cat, ok := categoryAliases[foldKey(raw)]; ok {
		return cat, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeInvalidCategory, fmt.Sprintf("unrecognized category %q", strings.TrimSpace(raw))).
		WithDetails(map[string]any{"category": raw})
}

// Normalize canonicalizes a raw (category, type) pair.
//
// Resolution order is load-bearing: the exact main-item table is consulted
// before any substring accessory matching, then explicit type aliases, then
// accessory classification with generation re-routing.
func Normalize(rawCategory, rawType string) (Item, error) {
	category, err := ResolveCategory(rawCategory)
	if err != nil {
		return Item{}, err
	}

	cleaned := cleanType(rawType)
	if cleaned == "" {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "item type is required")
	}
	key := foldKey(cleaned)

	if spec, ok := mainItems[key]; ok {
		return Item{Category: spec.category, Type: spec.canonical}, nil
	}

	if canonical, ok := typeAliases[key]; ok {
		if spec, found := mainItems[foldKey(canonical)]; found {
			return Item{Category: spec.category, Type: spec.canonical}, nil
		}
		cleaned = canonical
		key = foldKey(canonical)
	}

	if item, ok := normalizeAccessory(category, cleaned, key); ok {
		return item, nil
	}

	// Free-form custom type: keep the cleaned name under the resolved category.
	return Item{Category: category, Type: cleaned}, nil
}

// normalizeAccessory classifies and routes accessory types. Legacy clients
// submitted accessories under the main uniform categories, so accessories are
// re-routed to the accessory category of the matching generation.
func normalizeAccessory(category enums.Category, cleaned, key string) (Item, bool) {
	base, suffixGen, hasSuffix := stripGenerationSuffix(key)

	spec, known := accessories[base]
	if !known && !matchesAccessoryKeyword(base) {
		return Item{}, false
	}

	gen := resolveGeneration(spec, suffixGen, hasSuffix, key, category)

	if known {
		canonical := spec.canonical
		if spec.generation == "" {
			// Dual-context accessory: the generation suffix is part of the
			// canonical type so the (category, type, size) identity differs
			// per generation.
			canonical = fmt.Sprintf("%s (%s)", spec.canonical, gen)
		}
		return Item{Category: enums.AccessoryCategoryFor(gen), Type: canonical}, true
	}

	// Free-form accessory: route the category, preserve the submitted name.
	return Item{Category: enums.AccessoryCategoryFor(gen), Type: cleaned}, true
}

func resolveGeneration(spec accessorySpec, suffixGen enums.Generation, hasSuffix bool, key string, category enums.Category) enums.Generation {
	if spec.generation != "" {
		return spec.generation
	}
	if hasSuffix {
		return suffixGen
	}
	if gen, ok := generationFromKeywords(key); ok {
		return gen
	}
	if gen, ok := category.Generation(); ok {
		return gen
	}
	// Context-less dual-use accessory: default to the current generation.
	// Documented heuristic carried over from the legacy system, pending
	// product confirmation.
	return enums.GenerationNo4
}

func stripGenerationSuffix(key string) (string, enums.Generation, bool) {
	suffixes := []struct {
		text string
		gen  enums.Generation
	}{
		{"(no 3)", enums.GenerationNo3},
		{"no 3", enums.GenerationNo3},
		{"(no 4)", enums.GenerationNo4},
		{"no 4", enums.GenerationNo4},
	}
	for _, s := range suffixes {
		if strings.HasSuffix(key, s.text) && len(key) > len(s.text) {
			base := strings.TrimSpace(strings.TrimSuffix(key, s.text))
			if base != "" {
				return base, s.gen, true
			}
		}
	}
	return key, "", false
}

func generationFromKeywords(key string) (enums.Generation, bool) {
	if strings.Contains(key, "no 3") {
		return enums.GenerationNo3, true
	}
	if strings.Contains(key, "no 4") {
		return enums.GenerationNo4, true
	}
	return "", false
}

func matchesAccessoryKeyword(key string) bool {
	for _, keyword := range accessoryKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// IsAccessoryType reports whether the type name classifies as an accessory.
// Exact main-item matching runs first: a main item's name may be a strict
// prefix of an accessory's name, and substring matching alone would
// misclassify it.
func IsAccessoryType(typeName string) bool {
	key := foldKey(typeName)
	if _, ok := mainItems[key]; ok {
		return false
	}
	if canonical, ok := typeAliases[key]; ok {
		if _, found := mainItems[foldKey(canonical)]; found {
			return false
		}
	}
	base, _, _ := stripGenerationSuffix(key)
	if _, ok := accessories[base]; ok {
		return true
	}
	return matchesAccessoryKeyword(base)
}

// MainItem returns the static spec for an exact main-item type, resolving
// aliases first.
func MainItem(typeName string) (string, enums.Category, enums.SizeClass, bool) {
	key := foldKey(typeName)
	if canonical, ok := typeAliases[key]; ok {
		key = foldKey(canonical)
	}
	if spec, ok := mainItems[key]; ok {
		return spec.canonical, spec.category, spec.sizeClass, true
	}
	return "", "", "", false
}

// AliasVariants returns the known historical spellings for a canonical type.
func AliasVariants(canonicalType string) []string {
	return aliasesByCanonical[canonicalType]
}

// IsFootwearName applies the footwear keyword heuristic to free-form types.
func IsFootwearName(typeName string) bool {
	key := foldKey(typeName)
	for _, keyword := range footwearKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// IsSizedName applies the garment/footwear/headwear keyword heuristic used
// for free-form custom type names not in the static table.
func IsSizedName(typeName string) bool {
	key := foldKey(typeName)
	for _, keyword := range sizedTypeKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// FoldType exposes the canonical matching key for a type name. The inventory
// locator uses it for type equality across spelling variants.
func FoldType(typeName string) string {
	return foldKey(typeName)
}

package vocab

import (
	"strings"

	"github.com/kitroom/kitroom-backend/pkg/enums"
)

// Item is a canonicalized (category, type) pair.
type Item struct {
	Category enums.Category
	Type     string
}

// categoryAliases folds raw category spellings, including historical ones,
// to the five canonical categories. Keys are in foldKey form.
var categoryAliases = map[string]enums.Category{
	"shirt":     enums.CategoryShirt,
	"shirts":    enums.CategoryShirt,
	"t shirt":   enums.CategoryShirt, // legacy category, renamed to Shirt
	"tshirt":    enums.CategoryShirt,
	"tee shirt": enums.CategoryShirt,

	"no 3 uniform":     enums.CategoryNo3Uniform,
	"no3 uniform":      enums.CategoryNo3Uniform,
	"number 3 uniform": enums.CategoryNo3Uniform,
	"no 3":             enums.CategoryNo3Uniform,

	"no 4 uniform":     enums.CategoryNo4Uniform,
	"no4 uniform":      enums.CategoryNo4Uniform,
	"number 4 uniform": enums.CategoryNo4Uniform,
	"no 4":             enums.CategoryNo4Uniform,

	"no 3 accessories": enums.CategoryNo3Accessories,
	"no 3 accessory":   enums.CategoryNo3Accessories,
	"no3 accessories":  enums.CategoryNo3Accessories,

	"no 4 accessories": enums.CategoryNo4Accessories,
	"no 4 accessory":   enums.CategoryNo4Accessories,
	"no4 accessories":  enums.CategoryNo4Accessories,
}

type mainItemSpec struct {
	canonical string
	category  enums.Category
	sizeClass enums.SizeClass
}

// mainItems is the exact-match main-item table. Exact matching here runs
// before any accessory substring check: "Beret" must classify as a main item
// even though it is a strict prefix of the "Beret Badge" accessory.
var mainItems = map[string]mainItemSpec{
	"digital shirt": {"Digital Shirt", enums.CategoryShirt, enums.SizeClassFlexible},
	"plain shirt":   {"Plain Shirt", enums.CategoryShirt, enums.SizeClassFlexible},

	"beret":      {"Beret", enums.CategoryNo3Uniform, enums.SizeClassExact},
	"boots":      {"Boots", enums.CategoryNo3Uniform, enums.SizeClassNumericPrefix},
	"no 3 shirt": {"No 3 Shirt", enums.CategoryNo3Uniform, enums.SizeClassFlexible},
	"no 3 pants": {"No 3 Pants", enums.CategoryNo3Uniform, enums.SizeClassFlexible},
	"no 3 skirt": {"No 3 Skirt", enums.CategoryNo3Uniform, enums.SizeClassFlexible},

	"no 4 shirt": {"No 4 Shirt", enums.CategoryNo4Uniform, enums.SizeClassFlexible},
	"no 4 pants": {"No 4 Pants", enums.CategoryNo4Uniform, enums.SizeClassFlexible},
	"jockey cap": {"Jockey Cap", enums.CategoryNo4Uniform, enums.SizeClassFlexible},
}

// typeAliases resolves naming variants within a type family. These are
// explicit historical renames, never fuzzy matches: the gendered split
// shirt/blouse names collapse to one type, and the two legacy No 4 top names
// merged when the generations were consolidated.
var typeAliases = map[string]string{
	"digital":     "Digital Shirt",
	"digital tee": "Digital Shirt",
	"plain":       "Plain Shirt",

	"no 3 shirt (male)":    "No 3 Shirt",
	"no 3 blouse (female)": "No 3 Shirt",
	"no 3 blouse":          "No 3 Shirt",

	"no 4 top":         "No 4 Shirt",
	"no 4 smart shirt": "No 4 Shirt",

	"no 3 trousers": "No 3 Pants",
	"no 4 trousers": "No 4 Pants",
}

type accessorySpec struct {
	canonical string
	// generation is empty for dual-context accessories usable under either
	// generation; those are disambiguated by an explicit type suffix or by
	// the submitting category.
	generation enums.Generation
}

// accessories is the known-accessory table, keyed by the base name with any
// generation suffix already stripped.
var accessories = map[string]accessorySpec{
	"beret badge":    {canonical: "Beret Badge", generation: enums.GenerationNo3},
	"lanyard":        {canonical: "Lanyard", generation: enums.GenerationNo3},
	"shoulder flash": {canonical: "Shoulder Flash", generation: enums.GenerationNo3},
	"garters":        {canonical: "Garters", generation: enums.GenerationNo3},

	"name tag": {canonical: "Name Tag", generation: enums.GenerationNo4},
	"whistle":  {canonical: "Whistle", generation: enums.GenerationNo4},

	"belt":       {canonical: "Belt"},
	"epaulettes": {canonical: "Epaulettes"},
}

// accessoryKeywords backs the substring fallback for free-form accessory
// names ("Advanced Proficiency Badge" and similar custom entries).
var accessoryKeywords = []string{
	"badge",
	"belt",
	"lanyard",
	"name tag",
	"shoulder flash",
	"garters",
	"whistle",
	"epaulette",
	"pin",
}

// sizedTypeKeywords backs the requires-size fallback for free-form main-item
// names that never made it into the static table.
var sizedTypeKeywords = []string{
	// footwear
	"boot", "shoe",
	// headwear
	"beret", "cap", "hat",
	// garments
	"shirt", "blouse", "pants", "trousers", "skirt", "slacks", "top",
}

// footwearKeywords selects the numeric-prefix size class for free-form types.
var footwearKeywords = []string{"boot", "shoe"}

// foldKey lowercases, strips separator punctuation, and collapses whitespace
// so historical spellings ("No. 3 Uniform", "T-Shirt") land on one key.
func foldKey(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	replacer := strings.NewReplacer(".", " ", "-", " ", "_", " ")
	return strings.Join(strings.Fields(replacer.Replace(lowered)), " ")
}

// cleanType collapses whitespace while preserving the caller's casing.
func cleanType(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

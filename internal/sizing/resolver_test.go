package sizing

import (
	"testing"

	"github.com/kitroom/kitroom-backend/pkg/enums"
)

func TestRequiresSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		category enums.Category
		typeName string
		want     bool
	}{
		{enums.CategoryNo3Uniform, "Beret", true},
		{enums.CategoryNo3Uniform, "Boots", true},
		{enums.CategoryShirt, "Digital Shirt", true},
		// Accessories never carry a size, even with size-looking keywords.
		{enums.CategoryNo3Accessories, "Beret Badge", false},
		{enums.CategoryNo4Accessories, "Belt (No 4)", false},
		{enums.CategoryNo4Uniform, "Shoulder Flash", false},
		// Free-form names fall back to the keyword heuristic.
		{enums.CategoryNo4Uniform, "Ceremonial Slacks", true},
		{enums.CategoryNo4Uniform, "Parade Shoes", true},
		{enums.CategoryNo4Uniform, "Water Bottle", false},
	}
	for _, tc := range cases {
		if got := RequiresSize(tc.category, tc.typeName); got != tc.want {
			t.Fatalf("RequiresSize(%s, %s) = %v, want %v", tc.category, tc.typeName, got, tc.want)
		}
	}
}

func TestClassFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		category enums.Category
		typeName string
		want     enums.SizeClass
	}{
		{enums.CategoryNo3Uniform, "Beret", enums.SizeClassExact},
		{enums.CategoryNo3Uniform, "Boots", enums.SizeClassNumericPrefix},
		{enums.CategoryShirt, "Digital Shirt", enums.SizeClassFlexible},
		{enums.CategoryNo3Accessories, "Lanyard", enums.SizeClassNone},
		{enums.CategoryNo4Uniform, "Parade Shoes", enums.SizeClassNumericPrefix},
		{enums.CategoryNo4Uniform, "Ceremonial Top", enums.SizeClassFlexible},
	}
	for _, tc := range cases {
		if got := ClassFor(tc.category, tc.typeName); got != tc.want {
			t.Fatalf("ClassFor(%s, %s) = %s, want %s", tc.category, tc.typeName, got, tc.want)
		}
	}
}

func TestExactClassPreservesInternalWhitespace(t *testing.T) {
	t.Parallel()

	// Fractional beret sizes: no alternate strategy may rescue a mismatch.
	if Matches("6 5/8", "6 3/4", enums.SizeClassExact) {
		t.Fatal("6 3/4 must not match 6 5/8")
	}
	if Matches("63/4", "6 3/4", enums.SizeClassExact) {
		t.Fatal("internal whitespace is significant")
	}
	if !Matches(" 6 3/4 ", "6 3/4", enums.SizeClassExact) {
		t.Fatal("leading/trailing whitespace should be trimmed")
	}
	if Matches("6 3/4", "6 3/4 ", enums.SizeClassFlexible) == false {
		t.Fatal("sanity: flexible comparison folds whitespace")
	}
}

func TestNumericPrefixClass(t *testing.T) {
	t.Parallel()

	// Member submits "UK 7", record stored as "7".
	if !Matches("7", "UK 7", enums.SizeClassNumericPrefix) {
		t.Fatal("UK 7 must match 7")
	}
	if !Matches("UK 7", "7", enums.SizeClassNumericPrefix) {
		t.Fatal("7 must match UK 7")
	}
	if !Matches("uk7", "UK 7", enums.SizeClassNumericPrefix) {
		t.Fatal("prefix match is case-insensitive with optional space")
	}
	if !Matches("Size 7.5", "UK 7.5", enums.SizeClassNumericPrefix) {
		t.Fatal("numeric token fallback should compare 7.5 == 7.5")
	}
	if Matches("8", "UK 7", enums.SizeClassNumericPrefix) {
		t.Fatal("different numeric sizes must not match")
	}
}

func TestFlexibleClass(t *testing.T) {
	t.Parallel()

	if !Matches("m", "M", enums.SizeClassFlexible) {
		t.Fatal("case-folded comparison expected")
	}
	if !Matches("Extra  Large", "extra large", enums.SizeClassFlexible) {
		t.Fatal("whitespace-collapsed comparison expected")
	}
	if !Matches("Size 32", "32", enums.SizeClassFlexible) {
		t.Fatal("numeric token fallback expected")
	}
	if Matches("M", "L", enums.SizeClassFlexible) {
		t.Fatal("different letter sizes must not match")
	}
}

func TestNoSizeClass(t *testing.T) {
	t.Parallel()

	for _, query := range []string{"", "N/A", "na", "  "} {
		if !Matches("", query, enums.SizeClassNone) {
			t.Fatalf("query %q should match a size-less record", query)
		}
	}
	if Matches("M", "", enums.SizeClassNone) {
		t.Fatal("empty query must never match a record with a real size")
	}
	if Matches("", "M", enums.SizeClassNone) {
		t.Fatal("sized query must not match under the no-size class")
	}
}

package sizing

import (
	"strconv"
	"strings"

	"github.com/kitroom/kitroom-backend/internal/vocab"
	"github.com/kitroom/kitroom-backend/pkg/enums"
)

// footwearUnitPrefix is the unit marker historically recorded on footwear
// sizes, with or without a trailing space ("UK 7", "uk7").
const footwearUnitPrefix = "uk"

// RequiresSize reports whether a (category, type) carries a size.
// Accessories never do, even when the name contains a size-looking keyword.
// Main items consult the static table first, then the keyword heuristic for
// free-form custom type names.
func RequiresSize(category enums.Category, typeName string) bool {
	if category.IsAccessory() || vocab.IsAccessoryType(typeName) {
		return false
	}
	if _, _, _, ok := vocab.MainItem(typeName); ok {
		return true
	}
	return vocab.IsSizedName(typeName)
}

// ClassFor resolves the size matching strategy for a (category, type).
func ClassFor(category enums.Category, typeName string) enums.SizeClass {
	if category.IsAccessory() || vocab.IsAccessoryType(typeName) {
		return enums.SizeClassNone
	}
	if _, _, class, ok := vocab.MainItem(typeName); ok {
		return class
	}
	if !vocab.IsSizedName(typeName) {
		return enums.SizeClassNone
	}
	if vocab.IsFootwearName(typeName) {
		return enums.SizeClassNumericPrefix
	}
	return enums.SizeClassFlexible
}

// Matches reports whether an inventory record's size satisfies a query size
// under the given class. This is the single dispatch point for every size
// comparison in the system.
func Matches(candidateSize, querySize string, class enums.SizeClass) bool {
	switch class {
	case enums.SizeClassExact:
		return matchExact(candidateSize, querySize)
	case enums.SizeClassNumericPrefix:
		return matchNumericPrefix(candidateSize, querySize)
	case enums.SizeClassFlexible:
		return matchFlexible(candidateSize, querySize)
	default:
		return matchNoSize(candidateSize, querySize)
	}
}

// matchExact trims only. Internal whitespace and case stay significant:
// fractional headwear sizes like "6 3/4" must not collapse into "63/4", and
// no alternate strategy is attempted.
func matchExact(candidate, query string) bool {
	return strings.TrimSpace(candidate) == strings.TrimSpace(query)
}

func matchNumericPrefix(candidate, query string) bool {
	if stripUnitPrefix(candidate) == stripUnitPrefix(query) {
		return true
	}
	return numericTokensEqual(candidate, query)
}

func matchFlexible(candidate, query string) bool {
	if foldSize(candidate) == foldSize(query) {
		return true
	}
	return numericTokensEqual(candidate, query)
}

// matchNoSize accepts only size-less queries against size-less records. A
// record with a real size never matches an empty query.
func matchNoSize(candidate, query string) bool {
	return isNoSize(query) && isNoSize(candidate)
}

func isNoSize(value string) bool {
	folded := strings.ToLower(strings.TrimSpace(value))
	return folded == "" || folded == "n/a" || folded == "na" || folded == "no size"
}

func stripUnitPrefix(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) >= len(footwearUnitPrefix) &&
		strings.EqualFold(trimmed[:len(footwearUnitPrefix)], footwearUnitPrefix) {
		return strings.TrimSpace(trimmed[len(footwearUnitPrefix):])
	}
	return trimmed
}

func foldSize(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}

// numericTokensEqual extracts the first numeric token from each side and
// compares numerically, so "UK 7" and "7.0" land on the same record.
func numericTokensEqual(a, b string) bool {
	left, okA := firstNumericToken(a)
	right, okB := firstNumericToken(b)
	return okA && okB && left == right
}

func firstNumericToken(value string) (float64, bool) {
	start := -1
	for i, r := range value {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	end := start
	seenDot := false
	for end < len(value) {
		c := value[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	token := strings.TrimSuffix(value[start:end], ".")
	parsed, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

package enums

// SizeClass selects the size matching strategy for an item type.
type SizeClass string

const (
	// SizeClassExact compares sizes verbatim after trimming. Internal
	// whitespace and case stay significant (fractional headwear sizes).
	SizeClassExact SizeClass = "exact"
	// SizeClassNumericPrefix strips a leading unit prefix before comparing,
	// falling back to numeric token comparison (footwear).
	SizeClassNumericPrefix SizeClass = "numeric_prefix"
	// SizeClassFlexible compares case-folded, whitespace-collapsed forms,
	// falling back to numeric token comparison.
	SizeClassFlexible SizeClass = "flexible"
	// SizeClassNone marks size-less items; only empty queries match.
	SizeClassNone SizeClass = "none"
)

// String implements fmt.Stringer.
func (s SizeClass) String() string {
	return string(s)
}

package patterns

// Filter applies exclude-over-include precedence to base names.
type Filter struct {
	Include Set
	Exclude Set
}

// NewFilter compiles both pattern lists. A malformed pattern in either list fails the whole filter.
func NewFilter(includePatterns, excludePatterns string) (Filter, error) {
	includeSet, includeError := Compile(includePatterns)
	if includeError != nil {
		return Filter{}, includeError
	}
	excludeSet, excludeError := Compile(excludePatterns)
	if excludeError != nil {
		return Filter{}, excludeError
	}
	return Filter{Include: includeSet, Exclude: excludeSet}, nil
}

// Accepts reports whether a file with the given base name passes the filter.
// An exclude match always rejects; an empty include set accepts everything else.
func (filter Filter) Accepts(baseName string) bool {
	if filter.Exclude.MatchesAny(baseName) {
		return false
	}
	if !filter.Include.Empty() && !filter.Include.MatchesAny(baseName) {
		return false
	}
	return true
}

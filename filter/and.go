package filter

import (
	"github.com/helix-engine/helix/types"
)

type and struct {
	filters []ComponentFilter
}

// And matches archetypes that match every given filter.
func And(filters ...ComponentFilter) ComponentFilter {
	return &and{filters: filters}
}

func (f *and) MatchesComponents(components []types.Component) bool {
	for _, filter := range f.filters {
		if !filter.MatchesComponents(components) {
			return false
		}
	}
	return true
}

package filter

import (
	"github.com/helix-engine/helix/types"
)

type not struct {
	filter ComponentFilter
}

// Not matches archetypes that do not match the given filter.
func Not(filter ComponentFilter) ComponentFilter {
	return &not{filter: filter}
}

func (f *not) MatchesComponents(components []types.Component) bool {
	return !f.filter.MatchesComponents(components)
}

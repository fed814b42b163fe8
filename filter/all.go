package filter

import (
	"github.com/helix-engine/helix/types"
)

type all struct{}

// All matches every archetype.
func All() ComponentFilter {
	return &all{}
}

func (f *all) MatchesComponents(_ []types.Component) bool {
	return true
}

package filter

import (
	"github.com/helix-engine/helix/types"
)

type contains struct {
	components []types.Component
}

// Contains matches archetypes that contain all the components specified.
func Contains(components ...ComponentWrapper) ComponentFilter {
	return &contains{components: ConvertComponentWrappersToComponents(components)}
}

// ContainsComponents is the non-generic form of Contains for callers
// that already hold resolved component metadata.
func ContainsComponents(components ...types.Component) ComponentFilter {
	return &contains{components: components}
}

func (f *contains) MatchesComponents(components []types.Component) bool {
	for _, componentType := range f.components {
		if !MatchComponent(components, componentType) {
			return false
		}
	}
	return true
}

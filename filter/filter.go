// Package filter describes which archetypes a query is interested in.
// Filters are combined with And/Or/Not and matched against the component
// layout of each archetype.
package filter

import (
	"github.com/helix-engine/helix/types"
)

// ComponentFilter is a filter that selects archetypes based on the components
// they store.
type ComponentFilter interface {
	// MatchesComponents returns true if the archetype layout matches the filter.
	MatchesComponents(components []types.Component) bool
}

// ComponentWrapper wraps a Component type for filtering purposes.
type ComponentWrapper struct {
	Component types.Component
}

// Component returns a ComponentWrapper for the given component type T.
// This function is intentionally designed to return an unexported type
// as ComponentWrapper should not be used directly.
func Component[T types.Component]() ComponentWrapper {
	var x T
	return ComponentWrapper{
		Component: x,
	}
}

// ConvertComponentWrappersToComponents unwraps a slice of ComponentWrappers.
func ConvertComponentWrappersToComponents(wrappers []ComponentWrapper) []types.Component {
	comps := make([]types.Component, len(wrappers))
	for i, w := range wrappers {
		comps[i] = w.Component
	}
	return comps
}

package storage

import (
	"github.com/rotisserie/eris"
)

var (
	// ErrEntityNotFound is returned for any operation given a dead entity or
	// a handle whose generation no longer matches the live entity.
	ErrEntityNotFound = eris.New("entity does not exist")

	// ErrComponentNotRegistered is returned when an operation references a
	// component type that was never registered with the world.
	ErrComponentNotRegistered = eris.New("must register component")

	// ErrComponentSchemaMismatch is returned when a component name is
	// registered a second time with a different schema or storage family.
	ErrComponentSchemaMismatch = eris.New("component is already registered with a different schema")

	// ErrComponentNotOnEntity is returned when reading a component the entity
	// does not have.
	ErrComponentNotOnEntity = eris.New("component not on entity")

	// ErrComponentAlreadyOnEntity is returned when a create or insert names
	// the same component twice.
	ErrComponentAlreadyOnEntity = eris.New("component already on entity")

	// ErrNotTableComponent is returned when an archetype lookup includes a
	// sparse-set component. Sparse components never participate in archetype
	// membership.
	ErrNotTableComponent = eris.New("component is not table-stored")
)

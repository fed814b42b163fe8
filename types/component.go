package types

import (
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

// ComponentID is a dense integer assigned the first time a component type is
// registered. It is stable for the life of the world.
type ComponentID int

// ArchetypeID identifies a unique component-set layout and the table that
// stores its entities.
type ArchetypeID int

// StorageFamily selects where a component type's data lives. The family is
// decided once, at registration time, never per entity.
type StorageFamily int8

const (
	// TableStorage stores the component in dense, index-aligned columns.
	TableStorage StorageFamily = iota
	// SparseSetStorage stores the component in a hashed sparse set. Inserting
	// or removing such a component never moves the entity between archetypes,
	// which makes it the right family for components that churn far more
	// often than they are iterated.
	SparseSetStorage
)

func (f StorageFamily) String() string {
	if f == SparseSetStorage {
		return "sparse_set"
	}
	return "table"
}

// Component is the interface that the user needs to implement to create a new
// component type.
type Component interface {
	// Name returns the name of the component.
	Name() string
}

// ComponentMetadata wraps the user-defined Component struct and provides the
// functionality the engine needs to store and identify it.
type ComponentMetadata interface { //revive:disable-line:exported
	// SetID sets the ComponentID of this component. It must only be set once.
	SetID(ComponentID) error
	// ID returns the ComponentID of the component.
	ID() ComponentID
	// StorageFamily returns the storage family chosen at registration time.
	StorageFamily() StorageFamily
	// New returns the default value for the component struct.
	New() any
	Encode(any) ([]byte, error)
	Decode([]byte) (any, error)
	GetSchema() []byte

	Component
}

// SerializeComponentSchema reflects the JSON schema of a component value.
func SerializeComponentSchema(component Component) ([]byte, error) {
	componentSchema := jsonschema.Reflect(component)
	schema, err := componentSchema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return schema, nil
}

// IsComponentValid reports whether the given component value matches a schema
// captured at an earlier registration.
func IsComponentValid(component Component, jsonSchemaBytes []byte) (bool, error) {
	componentSchemaBytes, err := SerializeComponentSchema(component)
	if err != nil {
		return false, err
	}
	return IsSchemaValid(componentSchemaBytes, jsonSchemaBytes)
}

// IsSchemaValid reports whether two JSON schemas are equivalent.
func IsSchemaValid(jsonSchemaBytes1 []byte, jsonSchemaBytes2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(jsonSchemaBytes1, jsonSchemaBytes2)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}

// ConvertComponentMetadatasToComponents casts a slice of ComponentMetadata
// into a slice of Component.
func ConvertComponentMetadatasToComponents(comps []ComponentMetadata) []Component {
	ret := make([]Component, len(comps))
	for i, comp := range comps {
		ret[i] = comp
	}
	return ret
}

package component

import (
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"

	"github.com/helix-engine/helix/codec"
	"github.com/helix-engine/helix/types"
)

// Interface guard
var _ types.ComponentMetadata = (*componentMetadata[types.Component])(nil)

// Option augments the creation of a component metadata.
type Option[T types.Component] func(c *componentMetadata[T])

// WithSparseSetStorage stores the component in a sparse set instead of table
// columns. Inserting or removing it then never moves its entity between
// archetypes.
func WithSparseSetStorage[T types.Component]() Option[T] {
	return func(c *componentMetadata[T]) {
		c.family = types.SparseSetStorage
	}
}

// componentMetadata represents a registered component type. It is used to
// identify a component when getting or setting the component of an entity.
type componentMetadata[T types.Component] struct {
	isIDSet  bool
	id       types.ComponentID
	compType reflect.Type
	name     string
	schema   []byte
	family   types.StorageFamily
}

// NewComponentMetadata creates the metadata for component type T.
func NewComponentMetadata[T types.Component](opts ...Option[T]) (types.ComponentMetadata, error) {
	var t T
	compType := reflect.TypeOf(t)

	schema, err := jsonschema.ReflectFromType(compType).MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}

	compMetadata := &componentMetadata[T]{
		compType: compType,
		name:     t.Name(),
		schema:   schema,
		family:   types.TableStorage,
	}
	for _, opt := range opts {
		opt(compMetadata)
	}

	return compMetadata, nil
}

// SetID sets this component's ID. It must be unique across the world object.
func (c *componentMetadata[T]) SetID(id types.ComponentID) error {
	if c.isIDSet {
		// Components are only initialized once per world, but tests often
		// reuse a component type across multiple worlds. Allow that as long
		// as the ID itself does not change.
		if id == c.id {
			return nil
		}
		return eris.Errorf("id for component %v is already set to %v, cannot change to %v", c, c.id, id)
	}
	c.id = id
	c.isIDSet = true
	return nil
}

func (c *componentMetadata[T]) ID() types.ComponentID {
	return c.id
}

func (c *componentMetadata[T]) StorageFamily() types.StorageFamily {
	return c.family
}

// New returns the zero value of the component type.
func (c *componentMetadata[T]) New() any {
	var t T
	return t
}

func (c *componentMetadata[T]) Encode(v any) ([]byte, error) {
	return codec.Encode(v)
}

func (c *componentMetadata[T]) Decode(bz []byte) (any, error) {
	return codec.Decode[T](bz)
}

func (c *componentMetadata[T]) GetSchema() []byte {
	return c.schema
}

// String returns the component type name.
func (c *componentMetadata[T]) String() string {
	return c.name
}

// Name returns the name of the component.
func (c *componentMetadata[T]) Name() string {
	return c.name
}

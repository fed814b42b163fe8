package component_test

import (
	"testing"

	"github.com/helix-engine/helix/assert"
	"github.com/helix-engine/helix/component"
	"github.com/helix-engine/helix/types"
)

type health struct {
	HP  int
	Max int
}

func (health) Name() string { return "health" }

func TestComponentMetadata(t *testing.T) {
	meta, err := component.NewComponentMetadata[health]()
	assert.NilError(t, err)
	assert.Equal(t, "health", meta.Name())
	assert.Equal(t, types.TableStorage, meta.StorageFamily())
	assert.Equal(t, health{}, meta.New())

	sparse, err := component.NewComponentMetadata[health](component.WithSparseSetStorage[health]())
	assert.NilError(t, err)
	assert.Equal(t, types.SparseSetStorage, sparse.StorageFamily())
}

func TestSetIDIsSticky(t *testing.T) {
	meta, err := component.NewComponentMetadata[health]()
	assert.NilError(t, err)
	assert.NilError(t, meta.SetID(3))
	// Re-registering under the same id is fine; changing it is not.
	assert.NilError(t, meta.SetID(3))
	assert.Check(t, meta.SetID(4) != nil)
	assert.Equal(t, types.ComponentID(3), meta.ID())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	meta, err := component.NewComponentMetadata[health]()
	assert.NilError(t, err)

	bz, err := meta.Encode(health{HP: 40, Max: 100})
	assert.NilError(t, err)
	decoded, err := meta.Decode(bz)
	assert.NilError(t, err)
	assert.Equal(t, health{HP: 40, Max: 100}, decoded)
}

func TestSchemaValidation(t *testing.T) {
	meta, err := component.NewComponentMetadata[health]()
	assert.NilError(t, err)

	valid, err := types.IsComponentValid(health{HP: 1}, meta.GetSchema())
	assert.NilError(t, err)
	assert.True(t, valid)
}

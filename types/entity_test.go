package types_test

import (
	"testing"

	"github.com/helix-engine/helix/assert"
	"github.com/helix-engine/helix/types"
)

func TestEntityIDPacksIndexAndGeneration(t *testing.T) {
	id := types.NewEntityID(42, 7)
	assert.Equal(t, uint32(42), id.Index())
	assert.Equal(t, uint32(7), id.Generation())
	assert.Equal(t, "42.7", id.String())

	// Same index with a bumped generation is a different handle.
	assert.NotEqual(t, id, types.NewEntityID(42, 8))
}

package log_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/helix-engine/helix/assert"
	"github.com/helix-engine/helix/component"
	"github.com/helix-engine/helix/log"
	"github.com/helix-engine/helix/types"
)

type energy struct {
	Amount int
}

func (energy) Name() string { return "energy" }

type fakeWorld struct {
	components []types.ComponentMetadata
	systems    []string
}

func (f *fakeWorld) GetRegisteredComponents() []types.ComponentMetadata { return f.components }
func (f *fakeWorld) GetRegisteredSystems() []string                     { return f.systems }

func newFakeWorld(t *testing.T) *fakeWorld {
	t.Helper()
	meta, err := component.NewComponentMetadata[energy]()
	assert.NilError(t, err)
	assert.NilError(t, meta.SetID(0))
	return &fakeWorld{
		components: []types.ComponentMetadata{meta},
		systems:    []string{"moveSystem", "collideSystem"},
	}
}

func TestWorldLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	target := newFakeWorld(t)

	log.World(&logger, target, zerolog.InfoLevel)
	line := buf.String()
	assert.Contains(t, line, `"total_components":1`)
	assert.Contains(t, line, `"energy"`)
	assert.Contains(t, line, `"total_systems":2`)
	assert.Contains(t, line, "moveSystem")
	assert.Equal(t, 1, strings.Count(line, "\n"))
}

func TestEntityLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	target := newFakeWorld(t)

	log.Entity(&logger, zerolog.DebugLevel, types.NewEntityID(3, 1), 2, target.components)
	line := buf.String()
	assert.Contains(t, line, `"entity_id":"3.1"`)
	assert.Contains(t, line, `"archetype_id":2`)
	assert.Contains(t, line, `"energy"`)
}

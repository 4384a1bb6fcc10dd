package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/patchboard/pkg/graph"
)

func TestRegisterAndLookup(t *testing.T) {
	c := New()
	def := &TypeDef{Tag: "process", Ports: []PortDef{{ID: "in", Role: graph.PortIn}}}
	require.NoError(t, c.Register(def))

	assert.Same(t, def, c.Lookup("process"))
	assert.True(t, c.Has("process"))
	assert.Nil(t, c.Lookup("missing"))
	assert.False(t, c.Has("missing"))
	assert.Equal(t, 1, c.Len())
}

func TestRegisterRejectsDuplicatesAndEmptyTags(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(&TypeDef{Tag: "a"}))
	assert.Error(t, c.Register(&TypeDef{Tag: "a"}))
	assert.Error(t, c.Register(&TypeDef{}))
}

func TestIsGroup(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(&TypeDef{Tag: "frame", Group: true}))
	require.NoError(t, c.Register(&TypeDef{Tag: "process"}))

	assert.True(t, c.IsGroup("frame"))
	assert.False(t, c.IsGroup("process"))
	assert.False(t, c.IsGroup("unknown"))
	assert.Equal(t, "frame", c.FirstGroupTag())
}

func TestFirstGroupTagDeterministic(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(&TypeDef{Tag: "zone", Group: true}))
	require.NoError(t, c.Register(&TypeDef{Tag: "frame", Group: true}))
	assert.Equal(t, "frame", c.FirstGroupTag())

	assert.Equal(t, "", New().FirstGroupTag())
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.True(t, c.Has("process"))
	require.True(t, c.Has("frame"))
	assert.True(t, c.IsGroup("frame"))
	assert.False(t, c.IsGroup("timer"))

	// Distinct identities per call so catalog hot-reload is observable.
	other := Default()
	assert.NotSame(t, c.Lookup("process"), other.Lookup("process"))

	// The merge type derives inputs from its data payload.
	merge := c.Lookup("merge")
	require.NotNil(t, merge.DynamicPorts)
	ports := merge.DynamicPorts(graph.NodeData{"inputs": 3.0})
	assert.Len(t, ports, 3)
}

func TestTagsSorted(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(&TypeDef{Tag: "b"}))
	require.NoError(t, c.Register(&TypeDef{Tag: "a"}))
	assert.Equal(t, []string{"a", "b"}, c.Tags())
}

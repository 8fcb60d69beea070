package hashed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_Deterministic(t *testing.T) {
	e := New()
	a, err := e.Embed("the same text")
	require.NoError(t, err)
	b, err := e.Embed("the same text")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbed_DistinctTextsDiffer(t *testing.T) {
	e := New()
	a, _ := e.Embed("alpha")
	b, _ := e.Embed("beta")
	assert.NotEqual(t, a, b)
}

func TestEmbed_DimensionAndRange(t *testing.T) {
	e := New()
	vec, err := e.Embed("anything")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())
	for _, v := range vec {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

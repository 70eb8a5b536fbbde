package uuid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNanoIDGenerator(t *testing.T) {
	g := NewNanoIDGenerator(24)
	a, err := g.Generate()
	require.NoError(t, err)
	b, err := g.Generate()
	require.NoError(t, err)

	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.Contains(t, SessionAlphabet, string(r))
	}
	assert.Panics(t, func() { NewNanoIDGenerator(0) })
}

func TestFromName(t *testing.T) {
	a := FromName(EventNamespace, "CODE", "ex-1")
	assert.Equal(t, a, FromName(EventNamespace, "CODE", "ex-1"))
	assert.NotEqual(t, a, FromName(EventNamespace, "QUIZ", "ex-1"))
	assert.NotEqual(t, FromName(EventNamespace, "CO", "DEex-1"), FromName(EventNamespace, "CODE", "ex-1"))
}

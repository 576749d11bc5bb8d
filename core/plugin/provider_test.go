package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PlaylistFM/model"
)

func TestMemoryProviderIteratesAndRewinds(t *testing.T) {
	songs := []model.Song{{URI: "a"}, {URI: "b"}}
	p := NewMemoryProvider(songs)
	songs[0].URI = "mutated"

	assert.Equal(t, 2, p.Len())

	s, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, "a", s.URI)
	s.URI = "changed by caller"

	s, ok = p.Next()
	require.True(t, ok)
	assert.Equal(t, "b", s.URI)

	_, ok = p.Next()
	assert.False(t, ok)

	p.Rewind()
	s, ok = p.Next()
	require.True(t, ok)
	assert.Equal(t, "a", s.URI)
}

func TestCollect(t *testing.T) {
	p := NewMemoryProvider([]model.Song{{URI: "a"}, {URI: "b"}, {URI: "c"}})
	_, _ = p.Next()

	got := Collect(p)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].URI)
	assert.Empty(t, Collect(NewMemoryProvider(nil)))
}

package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PlaylistFM/config"
	"PlaylistFM/core/plugin"
)

func names(entries []*plugin.Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Descriptor().Name)
	}
	return out
}

func TestPluginOrder(t *testing.T) {
	r := NewRegistry(Deps{})
	assert.Equal(t,
		[]string{"extm3u", "m3u", "xspf", "pls", "asx", "rss", "soundcloud", "library"},
		names(r.Entries()))
}

func TestDefaultEnabledSet(t *testing.T) {
	r := NewRegistry(Deps{})
	require.NoError(t, r.GlobalInit(nil))

	var enabled []string
	for _, d := range r.Enabled() {
		enabled = append(enabled, d.Name)
	}
	// soundcloud 没有 apikey，library 没有数据库
	assert.Equal(t, []string{"extm3u", "m3u", "xspf", "pls", "asx", "rss"}, enabled)
	r.GlobalFinish()
}

func TestSoundCloudEnabledByConfig(t *testing.T) {
	blocks, err := config.ParseBlocks([]byte(`
playlist_plugins:
  - name: soundcloud
    apikey: abc
  - name: rss
    enabled: false
`))
	require.NoError(t, err)

	r := NewRegistry(Deps{})
	require.NoError(t, r.GlobalInit(blocks))
	assert.True(t, r.SuffixSupported("m3u"))
	assert.False(t, r.SuffixSupported("rss"))

	var enabled []string
	for _, d := range r.Enabled() {
		enabled = append(enabled, d.Name)
	}
	assert.Contains(t, enabled, "soundcloud")
	assert.NotContains(t, enabled, "rss")
}

func TestDescriptorsAreWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Plugins(Deps{}) {
		d := p.Descriptor()
		assert.False(t, seen[d.Name], "duplicate plugin name %s", d.Name)
		seen[d.Name] = true
		for _, list := range [][]string{d.Schemes, d.Suffixes, d.MimeTypes} {
			for _, v := range list {
				assert.NotEmpty(t, v, d.Name)
			}
		}
		assert.True(t, plugin.CanOpenURI(p) || plugin.CanOpenStream(p), d.Name)
	}
}

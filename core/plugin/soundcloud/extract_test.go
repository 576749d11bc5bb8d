package soundcloud

import (
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSingleTrack(t *testing.T) {
	songs, err := extractTracks(strings.NewReader(`{"duration": 5000, "title": "A", "stream_url": "http://x/y"}`), "key")
	require.NoError(t, err)
	require.Len(t, songs, 1)

	assert.Equal(t, "http://x/y?client_id=key", songs[0].URI)
	require.NotNil(t, songs[0].Tag)
	assert.Equal(t, 5, songs[0].Tag.Duration)
	assert.Equal(t, "A", songs[0].Tag.Title)
}

func TestExtractArrayKeepsSourceOrder(t *testing.T) {
	doc := `[
		{"title": "first", "stream_url": "http://x/1", "duration": 1000},
		{"title": "second", "stream_url": "http://x/2", "duration": 2000}
	]`
	songs, err := extractTracks(iotest.OneByteReader(strings.NewReader(doc)), "k")
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "first", songs[0].Tag.Title)
	assert.Equal(t, "http://x/1?client_id=k", songs[0].URI)
	assert.Equal(t, "second", songs[1].Tag.Title)
	assert.Equal(t, 2, songs[1].Tag.Duration)
}

func TestExtractNestedObjectDoesNotCloseRecord(t *testing.T) {
	doc := `{
		"kind": "playlist",
		"tracks": [
			{
				"stream_url": "http://x/1",
				"user": {"username": "u", "avatar": {"url": "http://img"}},
				"title": "after nested",
				"duration": 3000
			}
		]
	}`
	songs, err := extractTracks(strings.NewReader(doc), "k")
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "after nested", songs[0].Tag.Title)
	assert.Equal(t, 3, songs[0].Tag.Duration)
}

func TestExtractFieldsDoNotLeakBetweenRecords(t *testing.T) {
	doc := `[
		{"title": "one", "duration": 9000, "stream_url": "http://x/1"},
		{"stream_url": "http://x/2"}
	]`
	songs, err := extractTracks(strings.NewReader(doc), "k")
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "", songs[1].Tag.Title)
	assert.Equal(t, 0, songs[1].Tag.Duration)
}

func TestExtractFieldsStayInTheirObject(t *testing.T) {
	t.Run("object without stream_url", func(t *testing.T) {
		doc := `[{"title": "orphan", "duration": 9000}, {"stream_url": "http://x/2"}]`
		songs, err := extractTracks(strings.NewReader(doc), "k")
		require.NoError(t, err)
		require.Len(t, songs, 1)
		assert.Equal(t, "", songs[0].Tag.Title)
		assert.Equal(t, 0, songs[0].Tag.Duration)
	})

	t.Run("playlist wrapper", func(t *testing.T) {
		doc := `{"title": "Playlist", "duration": 60000, "tracks": [{"stream_url": "http://x/1"}]}`
		songs, err := extractTracks(strings.NewReader(doc), "k")
		require.NoError(t, err)
		require.Len(t, songs, 1)
		assert.Equal(t, "", songs[0].Tag.Title)
		assert.Equal(t, 0, songs[0].Tag.Duration)
	})

	t.Run("nested object inside the record", func(t *testing.T) {
		doc := `{"title": "T", "user": {"title": "u", "duration": 1000}, "stream_url": "http://x/1", "duration": 4000}`
		songs, err := extractTracks(strings.NewReader(doc), "k")
		require.NoError(t, err)
		require.Len(t, songs, 1)
		assert.Equal(t, "T", songs[0].Tag.Title)
		assert.Equal(t, 4, songs[0].Tag.Duration)
	})

	t.Run("stream_url in a nested object", func(t *testing.T) {
		doc := `{"title": "outer", "stream_url": "http://x/1", "media": {"stream_url": "http://x/2", "title": "inner"}}`
		songs, err := extractTracks(strings.NewReader(doc), "k")
		require.NoError(t, err)
		require.Len(t, songs, 1)
		assert.Equal(t, "http://x/2?client_id=k", songs[0].URI)
		assert.Equal(t, "inner", songs[0].Tag.Title)
	})
}

func TestExtractRejectsTrailingContent(t *testing.T) {
	songs, err := extractTracks(strings.NewReader(`{"stream_url": "http://x/1"} garbage`), "k")
	assert.Error(t, err)
	assert.Nil(t, songs)
}

func TestExtractIgnoresObjectsWithoutStreamURL(t *testing.T) {
	songs, err := extractTracks(strings.NewReader(`{"title": "x", "meta": {"a": 1}}`), "k")
	require.NoError(t, err)
	assert.Empty(t, songs)
}

func TestExtractDecodeErrorDiscardsRecords(t *testing.T) {
	doc := `[{"stream_url": "http://x/1"}, {"stream_url": "http://x/2"`
	songs, err := extractTracks(strings.NewReader(doc), "k")
	assert.Error(t, err)
	assert.Nil(t, songs)
}

func TestClassifyKey(t *testing.T) {
	assert.Equal(t, keyDuration, classifyKey("duration"))
	assert.Equal(t, keyTitle, classifyKey("title"))
	assert.Equal(t, keyStreamURL, classifyKey("stream_url"))
	assert.Equal(t, keyOther, classifyKey("dur"))
	assert.Equal(t, keyOther, classifyKey("stream_url_v2"))
}

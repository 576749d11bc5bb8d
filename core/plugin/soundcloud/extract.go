package soundcloud

import (
	"io"

	"PlaylistFM/core/jsonstream"
	"PlaylistFM/model"
)

// fieldKey 当前 map key 的分类，未知 key 的值全部忽略
type fieldKey int

const (
	keyOther fieldKey = iota
	keyDuration
	keyTitle
	keyStreamURL
)

func classifyKey(k string) fieldKey {
	switch k {
	case "duration":
		return keyDuration
	case "title":
		return keyTitle
	case "stream_url":
		return keyStreamURL
	default:
		return keyOther
	}
}

// trackBuilder 一个对象里读到的字段，对象结束时丢弃
type trackBuilder struct {
	streamURL  string
	title      string
	durationMS int64
}

// extractor 从 SoundCloud 的 tracks / playlists JSON 中提取曲目。
// 任何包含 stream_url 的对象都视为一首曲目，对象结束时产出。
// title 和 duration 只属于读到它们的那一层对象，不会带进别的曲目。
type extractor struct {
	apiKey string

	key fieldKey
	// frames 每层打开的对象一个，栈顶是当前对象
	frames []trackBuilder
	// record 最近一次出现 stream_url 的对象层数，0 表示不在曲目里
	record int
	songs  []model.Song
}

func newExtractor(apiKey string) *extractor {
	return &extractor{apiKey: apiKey}
}

func (x *extractor) callbacks() *jsonstream.Callbacks {
	return &jsonstream.Callbacks{
		OnInteger:  x.onInteger,
		OnString:   x.onString,
		OnMapKey:   x.onMapKey,
		OnStartMap: x.onStartMap,
		OnEndMap:   x.onEndMap,
	}
}

func (x *extractor) top() *trackBuilder {
	if len(x.frames) == 0 {
		return nil
	}
	return &x.frames[len(x.frames)-1]
}

func (x *extractor) onInteger(v int64) bool {
	if f := x.top(); f != nil && x.key == keyDuration {
		f.durationMS = v
	}
	return true
}

func (x *extractor) onString(v string) bool {
	f := x.top()
	if f == nil {
		return true
	}
	switch x.key {
	case keyTitle:
		f.title = v
	case keyStreamURL:
		f.streamURL = v
		x.record = len(x.frames)
	}
	return true
}

func (x *extractor) onMapKey(k string) bool {
	x.key = classifyKey(k)
	return true
}

func (x *extractor) onStartMap() bool {
	x.frames = append(x.frames, trackBuilder{})
	x.key = keyOther
	return true
}

func (x *extractor) onEndMap() bool {
	depth := len(x.frames)
	if depth == 0 {
		return true
	}
	if x.record == depth {
		x.record = 0
		x.emit(x.frames[depth-1])
	}
	x.frames = x.frames[:depth-1]
	return true
}

func (x *extractor) emit(b trackBuilder) {
	song := model.NewRemoteSong(b.streamURL + "?client_id=" + x.apiKey)
	song.Tag = &model.Tag{
		Title:    b.title,
		Duration: int(b.durationMS / 1000),
	}
	x.songs = append(x.songs, song)
}

// extractTracks 解码整个文档。出错时丢弃已经提取到的曲目。
func extractTracks(r io.Reader, apiKey string) ([]model.Song, error) {
	x := newExtractor(apiKey)
	if err := jsonstream.Decode(r, x.callbacks(), jsonstream.DefaultBufferSize); err != nil {
		return nil, err
	}
	return x.songs, nil
}

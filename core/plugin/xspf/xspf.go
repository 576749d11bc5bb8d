// Package xspf 解析 XSPF（XML Shareable Playlist Format）歌单。
package xspf

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"PlaylistFM/core/input"
	"PlaylistFM/core/plugin"
	"PlaylistFM/model"
)

// Name 插件名
const Name = "xspf"

type document struct {
	XMLName xml.Name `xml:"playlist"`
	Tracks  []track  `xml:"trackList>track"`
}

type track struct {
	Location []string `xml:"location"`
	Title    string   `xml:"title"`
	Creator  string   `xml:"creator"`
	Album    string   `xml:"album"`
	Duration int64    `xml:"duration"` // 毫秒
}

// Plugin XSPF 歌单插件
type Plugin struct {
	plugin.Base
}

// New 创建 XSPF 插件
func New() *Plugin {
	return &Plugin{}
}

// Descriptor 实现 plugin.Plugin
func (p *Plugin) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		Name:      Name,
		Suffixes:  []string{"xspf"},
		MimeTypes: []string{"application/xspf+xml"},
	}
}

// OpenStream 实现 plugin.StreamOpener
func (p *Plugin) OpenStream(_ context.Context, s input.Stream) (plugin.Provider, error) {
	var doc document
	if err := xml.NewDecoder(s).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode xspf: %w", err)
	}

	songs := make([]model.Song, 0, len(doc.Tracks))
	for _, t := range doc.Tracks {
		// 一个 track 可以有多个 location，取第一个非空的
		var loc string
		for _, l := range t.Location {
			if l = strings.TrimSpace(l); l != "" {
				loc = l
				break
			}
		}
		if loc == "" {
			continue
		}

		song := model.NewRemoteSong(loc)
		tag := &model.Tag{
			Title:    strings.TrimSpace(t.Title),
			Artist:   strings.TrimSpace(t.Creator),
			Album:    strings.TrimSpace(t.Album),
			Duration: int(t.Duration / 1000),
		}
		if !tag.IsEmpty() {
			song.Tag = tag
		}
		songs = append(songs, song)
	}
	return plugin.NewMemoryProvider(songs), nil
}

// Package rss 把播客 RSS 中带 enclosure 的条目解析成歌曲。
package rss

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"PlaylistFM/core/input"
	"PlaylistFM/core/plugin"
	"PlaylistFM/model"
)

// Name 插件名
const Name = "rss"

type document struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string `xml:"title"`
		Items []item `xml:"item"`
	} `xml:"channel"`
}

type item struct {
	Title     string `xml:"title"`
	Author    string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd author"`
	Duration  string `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd duration"`
	Enclosure struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
}

// Plugin RSS 歌单插件
type Plugin struct {
	plugin.Base
}

// New 创建 RSS 插件
func New() *Plugin {
	return &Plugin{}
}

// Descriptor 实现 plugin.Plugin
func (p *Plugin) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		Name:      Name,
		Suffixes:  []string{"rss"},
		MimeTypes: []string{"application/rss+xml", "text/xml"},
	}
}

// OpenStream 实现 plugin.StreamOpener
func (p *Plugin) OpenStream(_ context.Context, s input.Stream) (plugin.Provider, error) {
	var doc document
	if err := xml.NewDecoder(s).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rss: %w", err)
	}

	var songs []model.Song
	for _, it := range doc.Channel.Items {
		u := strings.TrimSpace(it.Enclosure.URL)
		if u == "" {
			continue
		}
		song := model.NewRemoteSong(u)
		tag := &model.Tag{
			Title:    strings.TrimSpace(it.Title),
			Artist:   strings.TrimSpace(it.Author),
			Album:    strings.TrimSpace(doc.Channel.Title),
			Duration: parseDuration(it.Duration),
		}
		if !tag.IsEmpty() {
			song.Tag = tag
		}
		songs = append(songs, song)
	}
	return plugin.NewMemoryProvider(songs), nil
}

// parseDuration 解析 itunes:duration，支持 "秒"、"mm:ss"、"hh:mm:ss"；无法解析返回 0
func parseDuration(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	secs := 0
	for _, part := range strings.Split(v, ":") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0
		}
		secs = secs*60 + n
	}
	return secs
}

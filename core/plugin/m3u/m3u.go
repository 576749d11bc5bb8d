// Package m3u 解析 M3U 和扩展 M3U（#EXTM3U / #EXTINF）歌单。
package m3u

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"PlaylistFM/core/input"
	"PlaylistFM/core/plugin"
	"PlaylistFM/model"
)

const (
	// Name 普通 M3U 插件名
	Name = "m3u"
	// ExtendedName 扩展 M3U 插件名
	ExtendedName = "extm3u"

	extHeader = "#EXTM3U"
	extInfo   = "#EXTINF:"

	maxLineSize = 64 * 1024
)

var (
	suffixes  = []string{"m3u"}
	mimeTypes = []string{"audio/x-mpegurl"}
)

// Plugin 普通 M3U：每个非空、非注释行是一首歌
type Plugin struct {
	plugin.Base
}

// New 创建普通 M3U 插件
func New() *Plugin {
	return &Plugin{}
}

// Descriptor 实现 plugin.Plugin
func (p *Plugin) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{Name: Name, Suffixes: suffixes, MimeTypes: mimeTypes}
}

// OpenStream 实现 plugin.StreamOpener
func (p *Plugin) OpenStream(_ context.Context, s input.Stream) (plugin.Provider, error) {
	sc := newScanner(s)
	var songs []model.Song
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		songs = append(songs, model.NewRemoteSong(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return plugin.NewMemoryProvider(songs), nil
}

// ExtendedPlugin 扩展 M3U：首行必须是 #EXTM3U，#EXTINF 提供时长和标题
type ExtendedPlugin struct {
	plugin.Base
}

// NewExtended 创建扩展 M3U 插件
func NewExtended() *ExtendedPlugin {
	return &ExtendedPlugin{}
}

// Descriptor 实现 plugin.Plugin
func (p *ExtendedPlugin) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{Name: ExtendedName, Suffixes: suffixes, MimeTypes: mimeTypes}
}

// OpenStream 实现 plugin.StreamOpener。
// 不是扩展格式时返回 nil provider，让普通 M3U 插件接手。
func (p *ExtendedPlugin) OpenStream(_ context.Context, s input.Stream) (plugin.Provider, error) {
	sc := newScanner(s)
	if !sc.Scan() {
		return nil, sc.Err()
	}
	if strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff")) != extHeader {
		return nil, nil
	}

	var (
		songs []model.Song
		tag   *model.Tag
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, extInfo):
			tag = parseExtInf(line[len(extInfo):])
		case line[0] == '#':
		default:
			song := model.NewRemoteSong(line)
			song.Tag = tag
			songs = append(songs, song)
			tag = nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return plugin.NewMemoryProvider(songs), nil
}

// parseExtInf 解析 "<秒数>,<标题>"，秒数为负表示未知
func parseExtInf(v string) *model.Tag {
	secs, title, _ := strings.Cut(v, ",")
	tag := &model.Tag{Title: strings.TrimSpace(title)}
	// 秒数后面可能跟着 tvg-id="..." 之类的属性
	if f := strings.Fields(secs); len(f) > 0 {
		if n, err := strconv.Atoi(f[0]); err == nil && n > 0 {
			tag.Duration = n
		}
	}
	if tag.IsEmpty() {
		return nil
	}
	return tag
}

func newScanner(s input.Stream) *bufio.Scanner {
	sc := bufio.NewScanner(s)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	return sc
}

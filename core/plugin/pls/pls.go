// Package pls 解析 SHOUTcast / Winamp 的 PLS 歌单（INI 格式的 [playlist] 段）。
package pls

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/go-ini/ini"

	"PlaylistFM/core/input"
	"PlaylistFM/core/plugin"
	"PlaylistFM/model"
)

// Name 插件名
const Name = "pls"

// maxSize PLS 文件大小上限，超出部分忽略
const maxSize = 1 << 20

// Plugin PLS 歌单插件
type Plugin struct {
	plugin.Base
}

// New 创建 PLS 插件
func New() *Plugin {
	return &Plugin{}
}

// Descriptor 实现 plugin.Plugin
func (p *Plugin) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		Name:      Name,
		Suffixes:  []string{"pls"},
		MimeTypes: []string{"audio/x-scpls"},
	}
}

// OpenStream 实现 plugin.StreamOpener
func (p *Plugin) OpenStream(_ context.Context, s input.Stream) (plugin.Provider, error) {
	data, err := io.ReadAll(io.LimitReader(s, maxSize))
	if err != nil {
		return nil, fmt.Errorf("read pls: %w", err)
	}

	// 地址里常带 ';'，不能当行内注释
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:             true,
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("parse pls: %w", err)
	}

	sec, err := f.GetSection("playlist")
	if err != nil {
		return nil, nil
	}

	n := sec.Key("numberofentries").MustInt(0)
	if n <= 0 {
		// 没有 NumberOfEntries 时一直读到 FileN 不存在为止
		for sec.HasKey("file" + strconv.Itoa(n+1)) {
			n++
		}
	}

	songs := make([]model.Song, 0, n)
	for i := 1; i <= n; i++ {
		idx := strconv.Itoa(i)
		file := sec.Key("file" + idx).String()
		if file == "" {
			continue
		}

		song := model.NewRemoteSong(file)
		tag := &model.Tag{Title: sec.Key("title" + idx).String()}
		if length := sec.Key("length" + idx).MustInt(0); length > 0 {
			tag.Duration = length
		}
		if !tag.IsEmpty() {
			song.Tag = tag
		}
		songs = append(songs, song)
	}
	return plugin.NewMemoryProvider(songs), nil
}

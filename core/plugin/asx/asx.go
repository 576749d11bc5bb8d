// Package asx 解析 Windows Media 的 ASX 歌单。
// ASX 的标签和属性名不区分大小写，所以这里逐个 token 处理，而不是直接 Unmarshal。
package asx

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"PlaylistFM/core/input"
	"PlaylistFM/core/plugin"
	"PlaylistFM/model"
)

// Name 插件名
const Name = "asx"

// Plugin ASX 歌单插件
type Plugin struct {
	plugin.Base
}

// New 创建 ASX 插件
func New() *Plugin {
	return &Plugin{}
}

// Descriptor 实现 plugin.Plugin
func (p *Plugin) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{
		Name:      Name,
		Suffixes:  []string{"asx"},
		MimeTypes: []string{"video/x-ms-asf"},
	}
}

// entry 一个 <entry> 的临时字段
type entry struct {
	href   string
	title  string
	author string
}

// OpenStream 实现 plugin.StreamOpener
func (p *Plugin) OpenStream(_ context.Context, s input.Stream) (plugin.Provider, error) {
	dec := xml.NewDecoder(s)
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose

	var (
		songs   []model.Song
		cur     *entry
		text    *string
		sawRoot bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode asx: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			if !sawRoot {
				if name != "asx" {
					return nil, fmt.Errorf("decode asx: unexpected root element <%s>", t.Name.Local)
				}
				sawRoot = true
				continue
			}
			switch name {
			case "entry":
				cur = &entry{}
			case "ref":
				// 只取第一个 ref，其余是备用地址
				if cur != nil && cur.href == "" {
					cur.href = attr(t, "href")
				}
			case "title":
				if cur != nil {
					text = &cur.title
				}
			case "author":
				if cur != nil {
					text = &cur.author
				}
			}
		case xml.CharData:
			if text != nil {
				*text += string(t)
			}
		case xml.EndElement:
			text = nil
			if cur != nil && strings.EqualFold(t.Name.Local, "entry") {
				if song, ok := cur.song(); ok {
					songs = append(songs, song)
				}
				cur = nil
			}
		}
	}
	if !sawRoot {
		return nil, errors.New("decode asx: empty document")
	}
	return plugin.NewMemoryProvider(songs), nil
}

func (e *entry) song() (model.Song, bool) {
	href := strings.TrimSpace(e.href)
	if href == "" {
		return model.Song{}, false
	}
	song := model.NewRemoteSong(href)
	tag := &model.Tag{
		Title:  strings.TrimSpace(e.title),
		Artist: strings.TrimSpace(e.author),
	}
	if !tag.IsEmpty() {
		song.Tag = tag
	}
	return song, true
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value
		}
	}
	return ""
}

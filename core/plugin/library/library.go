// Package library 从数据库读取已保存的歌单，URI 形如 library://<歌单名>。
package library

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"PlaylistFM/config"
	"PlaylistFM/core/plugin"
	"PlaylistFM/logger"
	"PlaylistFM/model"
	"PlaylistFM/repository"
)

const (
	// Name 插件名
	Name = "library"
	// Scheme 插件声明的 URI 协议
	Scheme = "library"
)

// Plugin 已保存歌单插件
type Plugin struct {
	plugin.Base
	repo repository.StoredPlaylistRepository
}

// New 创建插件；repo 为 nil 时插件在 Init 中禁用自身
func New(repo repository.StoredPlaylistRepository) *Plugin {
	return &Plugin{repo: repo}
}

// Descriptor 实现 plugin.Plugin
func (p *Plugin) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{Name: Name, Schemes: []string{Scheme}}
}

// Init 没有数据库时禁用
func (p *Plugin) Init(config.Block) bool {
	if p.repo == nil {
		logger.Debug("disabling the library playlist plugin because no database is configured")
		return false
	}
	return true
}

// OpenURI 实现 plugin.URIOpener；歌单不存在时返回 nil provider
func (p *Plugin) OpenURI(ctx context.Context, uri string) (plugin.Provider, error) {
	name, err := playlistName(uri)
	if err != nil {
		return nil, err
	}

	stored, err := p.repo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load stored playlist %q: %w", name, err)
	}
	if stored == nil {
		return nil, nil
	}

	songs := make([]model.Song, 0, len(stored.Items))
	for _, item := range stored.Items {
		songs = append(songs, item.ToSong())
	}
	return plugin.NewMemoryProvider(songs), nil
}

// URI 返回已保存歌单对应的 library:// 地址
func URI(name string) string {
	return Scheme + "://" + url.PathEscape(name)
}

func playlistName(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, Scheme+"://")
	if !ok {
		return "", fmt.Errorf("incompatible scheme for library plugin: %q", uri)
	}
	name, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("invalid library playlist name %q: %w", rest, err)
	}
	if name == "" {
		return "", fmt.Errorf("empty library playlist name in %q", uri)
	}
	return name, nil
}

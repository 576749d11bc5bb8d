// Package soundcloud 把 soundcloud:// URI 解析成曲目列表。
//
// 支持三种形式：
//
//	soundcloud://track/<id>
//	soundcloud://playlist/<id>
//	soundcloud://url/<soundcloud 页面地址>
//
// 插件通过 API 取回 JSON，用流式解码提取 stream_url / title / duration。
package soundcloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"PlaylistFM/config"
	"PlaylistFM/core/input"
	"PlaylistFM/core/plugin"
	"PlaylistFM/logger"
)

const (
	// Name 插件名，也是配置块里的 name
	Name = "soundcloud"
	// Scheme 插件声明的 URI 协议
	Scheme = "soundcloud"
	// DefaultAPIURL 未配置 api_url 时使用的 API 地址
	DefaultAPIURL = "http://api.soundcloud.com"
)

// ErrUnknownURI 无法识别的 soundcloud URI
var ErrUnknownURI = errors.New("unknown soundcloud URI")

// Plugin SoundCloud 歌单插件
type Plugin struct {
	opener input.Opener
	apiKey string
	apiURL string
}

// New 创建插件，opener 用来请求 API
func New(opener input.Opener) *Plugin {
	return &Plugin{opener: opener, apiURL: DefaultAPIURL}
}

// Descriptor 实现 plugin.Plugin
func (p *Plugin) Descriptor() plugin.Descriptor {
	return plugin.Descriptor{Name: Name, Schemes: []string{Scheme}}
}

// Init 读取 apikey 和可选的 api_url；没有 apikey 时插件禁用自身
func (p *Plugin) Init(block config.Block) bool {
	p.apiKey = block.GetString("apikey", "")
	if p.apiKey == "" {
		logger.Debug("disabling the soundcloud playlist plugin because API key is not set")
		return false
	}
	p.apiURL = strings.TrimRight(block.GetString("api_url", DefaultAPIURL), "/")
	return true
}

// Finish 实现 plugin.Plugin
func (p *Plugin) Finish() {
	p.apiKey = ""
}

// OpenURI 请求 API 并提取曲目
func (p *Plugin) OpenURI(ctx context.Context, uri string) (plugin.Provider, error) {
	apiURL, err := p.apiRequestURL(uri)
	if err != nil {
		return nil, err
	}

	s, err := input.OpenReady(ctx, p.opener, apiURL)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", apiURL, err)
	}
	defer s.Close()

	songs, err := extractTracks(s, p.apiKey)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", apiURL, err)
	}
	return plugin.NewMemoryProvider(songs), nil
}

// apiRequestURL 把 soundcloud:// URI 翻译成 API 请求地址
func (p *Plugin) apiRequestURL(uri string) (string, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || scheme != Scheme {
		return "", fmt.Errorf("incompatible scheme for soundcloud plugin: %q", uri)
	}
	kind, arg, _ := strings.Cut(rest, "/")

	switch kind {
	case "track":
		return p.apiURL + "/tracks/" + arg + ".json?client_id=" + p.apiKey, nil
	case "playlist":
		return p.apiURL + "/playlists/" + arg + ".json?client_id=" + p.apiKey, nil
	case "url":
		// 交给 resolve 接口，HTTP 客户端会跟随它返回的重定向
		return p.resolveURL(arg), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownURI, uri)
	}
}

func (p *Plugin) resolveURL(target string) string {
	var u string
	switch {
	case strings.HasPrefix(target, "http://"):
		u = target
	case strings.HasPrefix(target, "soundcloud.com"):
		u = "http://" + target
	default:
		// 当作 soundcloud.com 上的路径
		u = "http://soundcloud.com/" + target
	}
	return p.apiURL + "/resolve.json?url=" + u + "&client_id=" + p.apiKey
}

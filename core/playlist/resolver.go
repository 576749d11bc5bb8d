// Package playlist 根据 URI、本地路径或已打开的输入流挑选能解析它的歌单插件。
//
// 匹配顺序固定：URI 先按协议再按后缀；输入流先按 MIME 再按后缀。
// 同一输入、同一组已启用插件，总是选中同一个插件。
package playlist

import (
	"context"
	"io"
	"strings"

	"PlaylistFM/core/input"
	"PlaylistFM/core/plugin"
	"PlaylistFM/core/utils"
	"PlaylistFM/logger"
)

// Resolver 歌单解析入口
type Resolver struct {
	registry *plugin.Registry
	opener   input.Opener
}

// NewResolver 创建解析器。registry 需要已经完成 GlobalInit。
func NewResolver(registry *plugin.Registry, opener input.Opener) *Resolver {
	return &Resolver{registry: registry, opener: opener}
}

// Registry 返回解析器使用的插件注册表
func (r *Resolver) Registry() *plugin.Registry {
	return r.registry
}

// OpenURI 按协议、再按后缀尝试能直接打开 URI 的插件。
// 找不到插件时返回 nil。
func (r *Resolver) OpenURI(ctx context.Context, uri string) plugin.Provider {
	// 协议匹配阶段打开失败的插件，后缀阶段不再尝试
	tried := make(map[*plugin.Entry]bool)

	if p := r.openURIScheme(ctx, uri, tried); p != nil {
		return p
	}
	return r.openURISuffix(ctx, uri, tried)
}

func (r *Resolver) openURIScheme(ctx context.Context, uri string, tried map[*plugin.Entry]bool) plugin.Provider {
	scheme, ok := utils.URIScheme(uri)
	if !ok {
		return nil
	}

	for _, e := range r.registry.Entries() {
		if !e.Enabled() || !plugin.CanOpenURI(e.Plugin()) || !e.Descriptor().HasScheme(scheme) {
			continue
		}
		if p := r.tryURI(ctx, e, uri); p != nil {
			return p
		}
		tried[e] = true
	}
	return nil
}

func (r *Resolver) openURISuffix(ctx context.Context, uri string, tried map[*plugin.Entry]bool) plugin.Provider {
	suffix := utils.URISuffix(uri)
	if suffix == "" {
		return nil
	}

	for _, e := range r.registry.Entries() {
		if !e.Enabled() || tried[e] || !plugin.CanOpenURI(e.Plugin()) || !e.Descriptor().HasSuffix(suffix) {
			continue
		}
		if p := r.tryURI(ctx, e, uri); p != nil {
			return p
		}
	}
	return nil
}

func (r *Resolver) tryURI(ctx context.Context, e *plugin.Entry, uri string) plugin.Provider {
	p, err := plugin.OpenURI(ctx, e.Plugin(), uri)
	if err != nil {
		logger.Warn("playlist plugin failed to open uri",
			logger.String("plugin", e.Descriptor().Name),
			logger.String("uri", uri),
			logger.ErrorField(err))
		return nil
	}
	return p
}

// OpenStream 等待流就绪后先按 MIME、再按 uri 的后缀尝试插件。
// 每个插件尝试前流都会回到开头。uri 可以为空。
func (r *Resolver) OpenStream(ctx context.Context, s input.Stream, uri string) plugin.Provider {
	if err := s.WaitReady(ctx); err != nil {
		logger.Warn("playlist stream not ready",
			logger.String("uri", s.URI()),
			logger.ErrorField(err))
		return nil
	}

	if mime, ok := baseMimeType(s.MimeType()); ok {
		if p := r.openStreamMatching(ctx, s, func(d plugin.Descriptor) bool { return d.HasMimeType(mime) }); p != nil {
			return p
		}
	}

	if uri == "" {
		return nil
	}
	return r.openStreamSuffix(ctx, s, utils.URISuffix(uri))
}

// baseMimeType 去掉 ';' 之后的参数部分。以 ';' 开头的值视为不可用。
func baseMimeType(full string) (string, bool) {
	if full == "" {
		return "", false
	}
	mime, _, found := strings.Cut(full, ";")
	if found && mime == "" {
		return "", false
	}
	mime = strings.TrimSpace(mime)
	return mime, mime != ""
}

func (r *Resolver) openStreamSuffix(ctx context.Context, s input.Stream, suffix string) plugin.Provider {
	if suffix == "" {
		return nil
	}
	return r.openStreamMatching(ctx, s, func(d plugin.Descriptor) bool { return d.HasSuffix(suffix) })
}

func (r *Resolver) openStreamMatching(ctx context.Context, s input.Stream, match func(plugin.Descriptor) bool) plugin.Provider {
	for _, e := range r.registry.Entries() {
		if !e.Enabled() || !plugin.CanOpenStream(e.Plugin()) || !match(e.Descriptor()) {
			continue
		}

		// 每个插件都从头读
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			logger.Debug("playlist stream rewind failed",
				logger.String("uri", s.URI()),
				logger.ErrorField(err))
		}

		p, err := plugin.OpenStream(ctx, e.Plugin(), s)
		if err != nil {
			logger.Warn("playlist plugin failed to parse stream",
				logger.String("plugin", e.Descriptor().Name),
				logger.String("uri", s.URI()),
				logger.ErrorField(err))
			continue
		}
		if p != nil {
			return p
		}
	}
	return nil
}

// OpenPath 打开本地歌单文件并按后缀解析。
// 成功时同时返回提供者和打开的流，流由调用方关闭；失败时流已关闭。
func (r *Resolver) OpenPath(ctx context.Context, path string) (plugin.Provider, input.Stream) {
	suffix := utils.URISuffix(path)
	if suffix == "" || !r.SuffixSupported(suffix) {
		return nil, nil
	}

	s, err := input.OpenReady(ctx, r.opener, path)
	if err != nil {
		logger.Warn("failed to open playlist file",
			logger.String("path", path),
			logger.ErrorField(err))
		return nil, nil
	}

	p := r.openStreamSuffix(ctx, s, suffix)
	if p == nil {
		s.Close()
		return nil, nil
	}
	return p, s
}

// SuffixSupported 是否有已启用的插件声明了这个后缀
func (r *Resolver) SuffixSupported(suffix string) bool {
	return r.registry.SuffixSupported(suffix)
}

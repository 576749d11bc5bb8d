package playlist

import (
	"context"

	"PlaylistFM/core/input"
	"PlaylistFM/core/plugin"
	"PlaylistFM/core/utils"
	"PlaylistFM/logger"
	"PlaylistFM/model"
)

// OpenAny 打开任意形式的歌单地址。
// 没有协议的按本地路径处理；带协议的先交给 URI 插件，
// 没有插件接手时再通过传输层打开，按 MIME 和后缀解析。
// 返回的流（可能为 nil）在使用完 provider 后由调用方关闭。
func (r *Resolver) OpenAny(ctx context.Context, uri string) (plugin.Provider, input.Stream) {
	if !utils.HasScheme(uri) {
		return r.OpenPath(ctx, uri)
	}
	if p := r.OpenURI(ctx, uri); p != nil {
		return p, nil
	}
	return r.openRemote(ctx, uri)
}

func (r *Resolver) openRemote(ctx context.Context, uri string) (plugin.Provider, input.Stream) {
	s, err := r.opener.Open(ctx, uri)
	if err != nil {
		logger.Warn("failed to open playlist stream",
			logger.String("uri", uri),
			logger.ErrorField(err))
		return nil, nil
	}

	p := r.OpenStream(ctx, s, uri)
	if p == nil {
		s.Close()
		return nil, nil
	}
	return p, s
}

// Songs 解析歌单并取出全部歌曲，第二个返回值表示是否有插件接手
func (r *Resolver) Songs(ctx context.Context, uri string) ([]model.Song, bool) {
	p, s := r.OpenAny(ctx, uri)
	if p == nil {
		return nil, false
	}
	if s != nil {
		defer s.Close()
	}
	return plugin.Collect(p), true
}

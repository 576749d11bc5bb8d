// Package builtin 组装内置歌单插件表。表中的顺序就是匹配优先级。
package builtin

import (
	"PlaylistFM/core/input"
	"PlaylistFM/core/plugin"
	"PlaylistFM/core/plugin/asx"
	"PlaylistFM/core/plugin/library"
	"PlaylistFM/core/plugin/m3u"
	"PlaylistFM/core/plugin/pls"
	"PlaylistFM/core/plugin/rss"
	"PlaylistFM/core/plugin/soundcloud"
	"PlaylistFM/core/plugin/xspf"
	"PlaylistFM/repository"
)

// Deps 插件需要的外部依赖，缺失的依赖会让对应插件在初始化时禁用自身
type Deps struct {
	// Opener 网络插件请求远程 API 使用
	Opener input.Opener
	// Library 已保存歌单，可以为 nil
	Library repository.StoredPlaylistRepository
}

// Plugins 按声明顺序返回全部内置插件
func Plugins(deps Deps) []plugin.Plugin {
	return []plugin.Plugin{
		m3u.NewExtended(),
		m3u.New(),
		xspf.New(),
		pls.New(),
		asx.New(),
		rss.New(),
		soundcloud.New(deps.Opener),
		library.New(deps.Library),
	}
}

// NewRegistry 用内置插件创建注册表，尚未初始化
func NewRegistry(deps Deps) *plugin.Registry {
	return plugin.NewRegistry(Plugins(deps)...)
}

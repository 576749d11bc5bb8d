// Package plugin 定义歌单插件的描述信息、能力接口、歌曲序列提供者，
// 以及负责插件初始化和收尾的注册表。
package plugin

import (
	"context"
	"errors"
	"slices"

	"PlaylistFM/config"
	"PlaylistFM/core/input"
)

// ErrUnsupported 插件不具备请求的打开方式
var ErrUnsupported = errors.New("plugin: operation not supported")

// Descriptor 插件的静态描述。nil 列表表示不参与该信号的匹配；
// 匹配是区分大小写的精确比较。
type Descriptor struct {
	Name      string   `json:"name"`
	Schemes   []string `json:"schemes,omitempty"`
	Suffixes  []string `json:"suffixes,omitempty"`
	MimeTypes []string `json:"mimeTypes,omitempty"`
}

// HasScheme 判断协议是否在插件声明中
func (d Descriptor) HasScheme(scheme string) bool {
	return d.Schemes != nil && slices.Contains(d.Schemes, scheme)
}

// HasSuffix 判断后缀是否在插件声明中
func (d Descriptor) HasSuffix(suffix string) bool {
	return d.Suffixes != nil && slices.Contains(d.Suffixes, suffix)
}

// HasMimeType 判断 MIME 类型是否在插件声明中
func (d Descriptor) HasMimeType(mime string) bool {
	return d.MimeTypes != nil && slices.Contains(d.MimeTypes, mime)
}

// Plugin 所有歌单插件都要实现的生命周期接口
type Plugin interface {
	// Descriptor 返回插件的静态描述
	Descriptor() Descriptor
	// Init 用配置块初始化插件，返回 false 表示插件自行禁用
	Init(block config.Block) bool
	// Finish 释放 Init 中获取的资源，只对初始化成功的插件调用一次
	Finish()
}

// URIOpener 能直接根据 URI 生成歌单的插件
type URIOpener interface {
	OpenURI(ctx context.Context, uri string) (Provider, error)
}

// StreamOpener 能从已打开的输入流解析歌单的插件
type StreamOpener interface {
	OpenStream(ctx context.Context, s input.Stream) (Provider, error)
}

// Base 提供空的 Init/Finish，内嵌后只需实现 Descriptor 和打开方法
type Base struct{}

// Init 实现 Plugin
func (Base) Init(config.Block) bool { return true }

// Finish 实现 Plugin
func (Base) Finish() {}

// CanOpenURI 插件是否支持按 URI 打开
func CanOpenURI(p Plugin) bool {
	_, ok := p.(URIOpener)
	return ok
}

// CanOpenStream 插件是否支持按流打开
func CanOpenStream(p Plugin) bool {
	_, ok := p.(StreamOpener)
	return ok
}

// OpenURI 调用插件的 URI 打开能力，不支持时返回 ErrUnsupported
func OpenURI(ctx context.Context, p Plugin, uri string) (Provider, error) {
	o, ok := p.(URIOpener)
	if !ok {
		return nil, ErrUnsupported
	}
	return o.OpenURI(ctx, uri)
}

// OpenStream 调用插件的流打开能力，不支持时返回 ErrUnsupported
func OpenStream(ctx context.Context, p Plugin, s input.Stream) (Provider, error) {
	o, ok := p.(StreamOpener)
	if !ok {
		return nil, ErrUnsupported
	}
	return o.OpenStream(ctx, s)
}

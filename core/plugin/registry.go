package plugin

import (
	"fmt"

	"PlaylistFM/config"
	"PlaylistFM/logger"
)

// Entry 注册表中的一个插件槽位：插件本身加上运行期状态
type Entry struct {
	plugin      Plugin
	enabled     bool
	initialized bool
}

// Plugin 返回槽位中的插件
func (e *Entry) Plugin() Plugin {
	return e.plugin
}

// Descriptor 返回插件描述
func (e *Entry) Descriptor() Descriptor {
	return e.plugin.Descriptor()
}

// Enabled 插件是否参与匹配
func (e *Entry) Enabled() bool {
	return e.enabled
}

// Registry 有序的插件注册表。GlobalInit 之后只读，不需要加锁。
type Registry struct {
	entries []*Entry
}

// NewRegistry 按给定顺序创建注册表，顺序即匹配时的优先级
func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{entries: make([]*Entry, 0, len(plugins))}
	for _, p := range plugins {
		r.entries = append(r.entries, &Entry{plugin: p})
	}
	return r
}

// Entries 按声明顺序返回全部槽位
func (r *Registry) Entries() []*Entry {
	return r.entries
}

// Enabled 返回已启用插件的描述，保持声明顺序
func (r *Registry) Enabled() []Descriptor {
	var out []Descriptor
	for _, e := range r.entries {
		if e.enabled {
			out = append(out, e.Descriptor())
		}
	}
	return out
}

// GlobalInit 按声明顺序初始化插件。
// 配置块里 enabled 为 false 的插件直接跳过，不调用 Init；
// 没有配置块的插件使用空配置块初始化。
// 任意配置块缺少 name 时返回错误，调用方应视为启动失败。
func (r *Registry) GlobalInit(blocks []config.Block) error {
	for _, e := range r.entries {
		name := e.Descriptor().Name

		block, err := config.FindBlock(blocks, name)
		if err != nil {
			return fmt.Errorf("init playlist plugin %q: %w", name, err)
		}

		var b config.Block
		if block != nil {
			if !block.GetBool("enabled", true) {
				logger.Debug("playlist plugin disabled by config", logger.String("plugin", name))
				continue
			}
			b = *block
		}

		e.enabled = e.plugin.Init(b)
		e.initialized = e.enabled
		if !e.enabled {
			logger.Info("playlist plugin disabled itself during init", logger.String("plugin", name))
			continue
		}
		logger.Debug("playlist plugin initialized", logger.String("plugin", name))
	}
	return nil
}

// GlobalFinish 按声明顺序对每个已初始化的插件调用一次 Finish，
// 重复调用不会再次触发
func (r *Registry) GlobalFinish() {
	for _, e := range r.entries {
		if !e.initialized {
			continue
		}
		e.plugin.Finish()
		e.initialized = false
		e.enabled = false
	}
}

// SuffixSupported 判断是否有已启用的插件声明了这个后缀
func (r *Registry) SuffixSupported(suffix string) bool {
	for _, e := range r.entries {
		if e.enabled && e.Descriptor().HasSuffix(suffix) {
			return true
		}
	}
	return false
}

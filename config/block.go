package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlaylistPluginSection 是 YAML 里歌单插件配置块所在的键
const PlaylistPluginSection = "playlist_plugins"

// ErrBlockWithoutName 表示某个插件配置块缺少 name 字段，属于启动期致命错误
var ErrBlockWithoutName = errors.New("playlist plugin block without 'name'")

// Block 是一个插件配置块：若干 key/value 标量，外加来源行号
type Block struct {
	line   int
	values map[string]string
}

// NewBlock 用给定的值构造配置块，主要给测试和内置默认值使用
func NewBlock(values map[string]string) Block {
	b := Block{values: make(map[string]string, len(values))}
	for k, v := range values {
		b.values[k] = v
	}
	return b
}

// Line 返回配置块在文件中的起始行，手工构造的块为 0
func (b Block) Line() int {
	return b.line
}

// Name 返回插件名，第二个返回值表示是否存在
func (b Block) Name() (string, bool) {
	name, ok := b.values["name"]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// GetString 返回字符串值，不存在时返回 def
func (b Block) GetString(key, def string) string {
	if v, ok := b.values[key]; ok {
		return v
	}
	return def
}

// GetBool 返回布尔值；接受 yes/no/on/off，无法解析时返回 def
func (b Block) GetBool(key string, def bool) bool {
	v, ok := b.values[key]
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return parsed
}

// Has 判断某个键是否出现在块里
func (b Block) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// LoadBlocks 读取 YAML 文件中的歌单插件配置块。
// path 为空或文件不存在时返回空列表。
func LoadBlocks(path string) ([]Block, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read playlist plugin config: %w", err)
	}
	return ParseBlocks(raw)
}

// ParseBlocks 解析 YAML 内容中的 playlist_plugins 列表
func ParseBlocks(raw []byte) ([]Block, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal playlist plugin config: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("playlist plugin config: expected a mapping at line %d", root.Line)
	}

	var section *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == PlaylistPluginSection {
			section = root.Content[i+1]
			break
		}
	}
	if section == nil || section.Kind == yaml.ScalarNode && section.Tag == "!!null" {
		return nil, nil
	}
	if section.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s: expected a list at line %d", PlaylistPluginSection, section.Line)
	}

	blocks := make([]Block, 0, len(section.Content))
	for _, item := range section.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%s: expected a mapping at line %d", PlaylistPluginSection, item.Line)
		}
		b := Block{line: item.Line, values: make(map[string]string, len(item.Content)/2)}
		for i := 0; i+1 < len(item.Content); i += 2 {
			key, value := item.Content[i], item.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				continue
			}
			b.values[key.Value] = value.Value
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// FindBlock 按顺序查找第一个 name 等于 pluginName 的配置块。
// 扫描途中遇到没有 name 的块时返回 ErrBlockWithoutName。
func FindBlock(blocks []Block, pluginName string) (*Block, error) {
	for i := range blocks {
		name, ok := blocks[i].Name()
		if !ok {
			return nil, fmt.Errorf("%w in line %d", ErrBlockWithoutName, blocks[i].line)
		}
		if name == pluginName {
			return &blocks[i], nil
		}
	}
	return nil, nil
}

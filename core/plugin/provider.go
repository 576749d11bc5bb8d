package plugin

import (
	"slices"

	"PlaylistFM/model"
)

// Provider 歌单解析结果：一个有序、有限的歌曲序列
type Provider interface {
	// Next 返回下一首歌，序列结束时第二个返回值为 false
	Next() (*model.Song, bool)
	// Close 释放提供者持有的资源
	Close()
}

// MemoryProvider 内存中的歌曲序列，构造后不再修改，可以 Rewind 重新遍历
type MemoryProvider struct {
	songs []model.Song
	pos   int
}

// NewMemoryProvider 创建内存歌曲序列，会复制传入的切片
func NewMemoryProvider(songs []model.Song) *MemoryProvider {
	return &MemoryProvider{songs: slices.Clone(songs)}
}

// Next 实现 Provider
func (p *MemoryProvider) Next() (*model.Song, bool) {
	if p.pos >= len(p.songs) {
		return nil, false
	}
	s := p.songs[p.pos]
	p.pos++
	return &s, true
}

// Close 实现 Provider
func (p *MemoryProvider) Close() {}

// Rewind 回到序列开头
func (p *MemoryProvider) Rewind() {
	p.pos = 0
}

// Len 返回歌曲总数
func (p *MemoryProvider) Len() int {
	return len(p.songs)
}

// Collect 取出提供者剩余的全部歌曲并关闭它
func Collect(p Provider) []model.Song {
	defer p.Close()
	var songs []model.Song
	for {
		s, ok := p.Next()
		if !ok {
			return songs
		}
		songs = append(songs, *s)
	}
}

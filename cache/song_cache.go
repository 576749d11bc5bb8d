// Package cache 用 Redis 缓存歌单解析结果，本地歌单文件变化时通过 fsnotify 失效。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"PlaylistFM/model"
)

const songKeyPrefix = "playlist:resolved:"

// SongKey 解析结果在 Redis 中的键
func SongKey(uri string) string {
	return songKeyPrefix + uri
}

// SongCache 以歌单地址为键缓存解析出的歌曲列表
type SongCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSongCache 创建缓存，ttl 为 0 表示不过期
func NewSongCache(client *redis.Client, ttl time.Duration) *SongCache {
	return &SongCache{client: client, ttl: ttl}
}

// Get 读取缓存，未命中时第二个返回值为 false
func (c *SongCache) Get(ctx context.Context, uri string) ([]model.Song, bool, error) {
	raw, err := c.client.Get(ctx, SongKey(uri)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached playlist: %w", err)
	}

	var songs []model.Song
	if err := json.Unmarshal(raw, &songs); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached playlist: %w", err)
	}
	return songs, true, nil
}

// Set 写入缓存
func (c *SongCache) Set(ctx context.Context, uri string, songs []model.Song) error {
	raw, err := json.Marshal(songs)
	if err != nil {
		return fmt.Errorf("failed to marshal playlist: %w", err)
	}
	if err := c.client.Set(ctx, SongKey(uri), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache playlist: %w", err)
	}
	return nil
}

// Invalidate 删除某个歌单的缓存
func (c *SongCache) Invalidate(ctx context.Context, uri string) error {
	if err := c.client.Del(ctx, SongKey(uri)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached playlist: %w", err)
	}
	return nil
}

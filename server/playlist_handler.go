package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"PlaylistFM/cache"
	"PlaylistFM/core/playlist"
	"PlaylistFM/core/plugin"
	"PlaylistFM/core/utils"
	"PlaylistFM/logger"
	"PlaylistFM/model"
)

const (
	// WebSocket 配置
	writeWait = 10 * time.Second
)

// PlaylistHandler 处理歌单解析相关的请求
type PlaylistHandler struct {
	resolver  *playlist.Resolver
	cache     *cache.SongCache
	watcher   *cache.Watcher
	localPath func(string) (string, error)
	upgrader  websocket.Upgrader
}

// NewPlaylistHandler 创建处理器。
// songCache 和 watcher 可以为 nil；localPath 把本地路径映射到歌单目录，
// 目录外的路径返回错误。localPath 为 nil 时不做限制。
func NewPlaylistHandler(resolver *playlist.Resolver, songCache *cache.SongCache, watcher *cache.Watcher, localPath func(string) (string, error)) *PlaylistHandler {
	return &PlaylistHandler{
		resolver:  resolver,
		cache:     songCache,
		watcher:   watcher,
		localPath: localPath,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

type pluginInfo struct {
	plugin.Descriptor
	Enabled bool `json:"enabled"`
}

type resolveResponse struct {
	URI   string       `json:"uri"`
	Songs []model.Song `json:"songs"`
}

// PluginsHandler 按匹配顺序列出全部插件及启用状态
func (h *PlaylistHandler) PluginsHandler(w http.ResponseWriter, r *http.Request) {
	entries := h.resolver.Registry().Entries()
	out := make([]pluginInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, pluginInfo{Descriptor: e.Descriptor(), Enabled: e.Enabled()})
	}
	writeJSON(w, http.StatusOK, out)
}

// ResolveHandler 解析 uri 参数指向的歌单，一次性返回全部歌曲
func (h *PlaylistHandler) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	uri := strings.TrimSpace(r.URL.Query().Get("uri"))
	if uri == "" {
		http.Error(w, "uri is required", http.StatusBadRequest)
		return
	}

	songs, ok, err := h.resolve(r.Context(), uri)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "No playlist plugin can handle this uri", http.StatusNotFound)
		return
	}
	if songs == nil {
		songs = []model.Song{}
	}
	writeJSON(w, http.StatusOK, resolveResponse{URI: uri, Songs: songs})
}

// ResolveWSHandler 通过 websocket 逐首推送解析结果，最后发送 {"done":true}
func (h *PlaylistHandler) ResolveWSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	uri := strings.TrimSpace(r.URL.Query().Get("uri"))
	if uri == "" {
		writeWS(conn, map[string]string{"error": "uri is required"})
		return
	}

	ctx := r.Context()
	key, local, err := h.resolveKey(uri)
	if err != nil {
		writeWS(conn, map[string]string{"error": err.Error()})
		return
	}
	if songs, ok := h.cachedSongs(ctx, key); ok {
		for i := range songs {
			if err := writeWS(conn, songs[i]); err != nil {
				return
			}
		}
		writeWS(conn, map[string]any{"done": true, "count": len(songs)})
		return
	}

	p, s := h.resolver.OpenAny(ctx, key)
	if p == nil {
		writeWS(conn, map[string]string{"error": "no playlist plugin can handle this uri"})
		return
	}
	defer func() {
		p.Close()
		if s != nil {
			s.Close()
		}
	}()

	var sent []model.Song
	for {
		song, ok := p.Next()
		if !ok {
			break
		}
		if err := writeWS(conn, song); err != nil {
			logger.Debug("websocket client went away",
				logger.String("uri", uri),
				logger.ErrorField(err))
			return
		}
		sent = append(sent, *song)
	}
	h.storeSongs(ctx, key, local, sent)
	writeWS(conn, map[string]any{"done": true, "count": len(sent)})
}

// resolve 先查缓存，未命中时交给解析器并写回缓存
func (h *PlaylistHandler) resolve(ctx context.Context, uri string) ([]model.Song, bool, error) {
	key, local, err := h.resolveKey(uri)
	if err != nil {
		return nil, false, err
	}
	if songs, ok := h.cachedSongs(ctx, key); ok {
		return songs, true, nil
	}

	songs, ok := h.resolver.Songs(ctx, key)
	if !ok {
		return nil, false, nil
	}
	h.storeSongs(ctx, key, local, songs)
	return songs, true, nil
}

// resolveKey 返回用于解析和缓存的地址。
// 本地路径和 file:// 统一成歌单目录下的绝对路径，方便文件监听对上号。
func (h *PlaylistHandler) resolveKey(uri string) (string, bool, error) {
	scheme, hasScheme := utils.URIScheme(uri)
	if hasScheme && !strings.EqualFold(scheme, "file") {
		return uri, false, nil
	}
	if h.localPath != nil {
		path, err := h.localPath(uri)
		if err != nil {
			logger.Warn("rejected local playlist path",
				logger.String("uri", uri),
				logger.ErrorField(err))
			return "", false, errors.New("playlist path must stay inside the music directory")
		}
		return path, true, nil
	}
	path := uri
	if hasScheme {
		path = uri[len(scheme)+len("://"):]
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, true, nil
}

func (h *PlaylistHandler) cachedSongs(ctx context.Context, key string) ([]model.Song, bool) {
	if h.cache == nil {
		return nil, false
	}
	songs, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("playlist cache lookup failed",
			logger.String("uri", key),
			logger.ErrorField(err))
		return nil, false
	}
	return songs, ok
}

func (h *PlaylistHandler) storeSongs(ctx context.Context, key string, local bool, songs []model.Song) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, key, songs); err != nil {
		logger.Warn("failed to cache resolved playlist",
			logger.String("uri", key),
			logger.ErrorField(err))
		return
	}
	if local && h.watcher != nil {
		if err := h.watcher.Watch(key); err != nil {
			logger.Warn("failed to watch playlist file",
				logger.String("path", key),
				logger.ErrorField(err))
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func writeWS(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"PlaylistFM/cache"
	"PlaylistFM/core/plugin/library"
	"PlaylistFM/logger"
	"PlaylistFM/model"
	"PlaylistFM/repository"
)

// LibraryHandler 管理 library 插件读取的已保存歌单
type LibraryHandler struct {
	repo  repository.StoredPlaylistRepository
	cache *cache.SongCache
}

// NewLibraryHandler 创建处理器，songCache 可以为 nil
func NewLibraryHandler(repo repository.StoredPlaylistRepository, songCache *cache.SongCache) *LibraryHandler {
	return &LibraryHandler{repo: repo, cache: songCache}
}

type saveLibraryRequest struct {
	Songs []model.Song `json:"songs"`
}

// ListHandler 列出全部已保存歌单（不含歌曲）
func (h *LibraryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.repo.List(r.Context())
	if err != nil {
		logger.Error("failed to list stored playlists", logger.ErrorField(err))
		http.Error(w, "Failed to list playlists", http.StatusInternalServerError)
		return
	}
	if playlists == nil {
		playlists = []*model.StoredPlaylist{}
	}
	writeJSON(w, http.StatusOK, playlists)
}

// GetHandler 返回一个已保存歌单及其歌曲
func (h *LibraryHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	stored, err := h.repo.GetByName(r.Context(), name)
	if err != nil {
		logger.Error("failed to load stored playlist", logger.String("name", name), logger.ErrorField(err))
		http.Error(w, "Failed to load playlist", http.StatusInternalServerError)
		return
	}
	if stored == nil {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// SaveHandler 创建歌单，已存在时整体替换歌曲
func (h *LibraryHandler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if strings.TrimSpace(name) == "" {
		http.Error(w, "Playlist name is required", http.StatusBadRequest)
		return
	}

	var req saveLibraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	items := make([]model.StoredPlaylistItem, 0, len(req.Songs))
	for _, s := range req.Songs {
		if strings.TrimSpace(s.URI) == "" {
			http.Error(w, "Every song needs a uri", http.StatusBadRequest)
			return
		}
		items = append(items, model.NewStoredPlaylistItem(s))
	}

	ctx := r.Context()
	existing, err := h.repo.GetByName(ctx, name)
	if err != nil {
		logger.Error("failed to load stored playlist", logger.String("name", name), logger.ErrorField(err))
		http.Error(w, "Failed to save playlist", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if existing == nil {
		existing = &model.StoredPlaylist{Name: name, Items: items}
		err = h.repo.Create(ctx, existing)
		status = http.StatusCreated
	} else {
		err = h.repo.ReplaceItems(ctx, existing.ID, items)
		existing.Items = items
	}
	if err != nil {
		logger.Error("failed to save stored playlist", logger.String("name", name), logger.ErrorField(err))
		http.Error(w, "Failed to save playlist", http.StatusInternalServerError)
		return
	}

	h.invalidate(r, name)
	writeJSON(w, status, existing)
}

// DeleteHandler 删除歌单；不存在的歌单也返回成功
func (h *LibraryHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := h.repo.Delete(r.Context(), name); err != nil {
		logger.Error("failed to delete stored playlist", logger.String("name", name), logger.ErrorField(err))
		http.Error(w, "Failed to delete playlist", http.StatusInternalServerError)
		return
	}
	h.invalidate(r, name)
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) invalidate(r *http.Request, name string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(r.Context(), library.URI(name)); err != nil {
		logger.Warn("failed to invalidate library playlist cache",
			logger.String("name", name),
			logger.ErrorField(err))
	}
}

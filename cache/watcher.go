package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"PlaylistFM/logger"
)

// Watcher 监听本地歌单文件，文件被修改、删除或重命名时让对应缓存失效
type Watcher struct {
	cache   *SongCache
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	dirs  map[string]bool
	files map[string]bool
}

// NewWatcher 创建监听器，需要调用 Run 才开始处理事件
func NewWatcher(c *SongCache) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		cache:   c,
		watcher: fw,
		dirs:    make(map[string]bool),
		files:   make(map[string]bool),
	}, nil
}

// Watch 关注一个已缓存的本地歌单。监听的是所在目录，以便捕获重命名和重建。
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[path] = true
	return nil
}

// Run 处理文件事件直到 ctx 结束，返回前关闭底层监听器
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("playlist watcher error", logger.ErrorField(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Create) {
		return
	}

	path := filepath.Clean(event.Name)
	w.mu.Lock()
	watched := w.files[path]
	delete(w.files, path)
	w.mu.Unlock()
	if !watched {
		return
	}

	if err := w.cache.Invalidate(ctx, path); err != nil {
		logger.Warn("failed to invalidate playlist cache",
			logger.String("path", path),
			logger.ErrorField(err))
		return
	}
	logger.Debug("playlist cache invalidated", logger.String("path", path))
}

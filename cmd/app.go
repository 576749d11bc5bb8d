package cmd

import (
	"fmt"

	"PlaylistFM/cache"
	"PlaylistFM/config"
	"PlaylistFM/core/input"
	"PlaylistFM/core/playlist"
	"PlaylistFM/core/plugin"
	"PlaylistFM/core/plugin/builtin"
	"PlaylistFM/db"
	"PlaylistFM/logger"
	"PlaylistFM/model"
	"PlaylistFM/repository"
	"PlaylistFM/storage"
)

// app 命令共享的运行时组件
type app struct {
	opener    *input.Registry
	registry  *plugin.Registry
	resolver  *playlist.Resolver
	repo      repository.StoredPlaylistRepository
	songCache *cache.SongCache
}

type appOptions struct {
	// cache 为 true 且配置开启时连接 Redis 缓存解析结果
	cache bool
}

// newApp 按配置连接可选的外部服务，然后初始化歌单插件。
// MinIO 和 Redis 不可用时只降级；数据库开启却连不上、插件配置有误则返回错误。
func newApp(cfg *config.Config, opts appOptions) (*app, error) {
	blocks, err := config.LoadBlocks(cfg.PlaylistPluginConfig)
	if err != nil {
		return nil, err
	}

	a := &app{}

	var minioOpener *input.MinioOpener
	if cfg.MinioEndpoint != "" {
		if err := storage.InitMinio(cfg); err != nil {
			logger.Warn("MinIO unavailable, minio:// playlists disabled", logger.ErrorField(err))
		} else {
			minioOpener = input.NewMinioOpener(storage.GetMinioClient())
		}
	}
	a.opener = input.NewRegistry(input.NewHTTPOpener(), minioOpener, cfg.MusicDir)

	if cfg.DBEnabled {
		if err := db.ConnectGormDB(cfg); err != nil {
			return nil, err
		}
		if err := db.AutoMigrateModels(db.GormDB, &model.StoredPlaylist{}, &model.StoredPlaylistItem{}); err != nil {
			a.close()
			return nil, err
		}
		a.repo = repository.NewGormStoredPlaylistRepository(db.GormDB)
	}

	if opts.cache && cfg.CacheEnabled {
		if err := cache.ConnectRedis(cfg); err != nil {
			logger.Warn("Redis unavailable, playlist cache disabled", logger.ErrorField(err))
		} else {
			a.songCache = cache.NewSongCache(cache.RedisClient, cfg.CacheTTL)
		}
	}

	a.registry = builtin.NewRegistry(builtin.Deps{Opener: a.opener, Library: a.repo})
	if err := a.registry.GlobalInit(blocks); err != nil {
		a.close()
		return nil, fmt.Errorf("load %s: %w", cfg.PlaylistPluginConfig, err)
	}
	a.resolver = playlist.NewResolver(a.registry, a.opener)

	names := make([]string, 0, len(a.registry.Enabled()))
	for _, d := range a.registry.Enabled() {
		names = append(names, d.Name)
	}
	logger.Debug("playlist plugins ready", logger.Strings("enabled", names))
	return a, nil
}

// close 结束插件并断开外部连接
func (a *app) close() {
	if a.registry != nil {
		a.registry.GlobalFinish()
	}
	if err := cache.CloseRedis(); err != nil {
		logger.Warn("failed to close Redis", logger.ErrorField(err))
	}
	if err := db.CloseGormDB(); err != nil {
		logger.Warn("failed to close database", logger.ErrorField(err))
	}
}

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"PlaylistFM/cache"
	"PlaylistFM/logger"
	"PlaylistFM/server"
)

var serverAddr string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动歌单解析服务",
	Long:  `启动 HTTP 服务，提供歌单解析 API、websocket 歌曲推送和已保存歌单管理。`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cfg, appOptions{cache: true})
		if err != nil {
			logger.Fatal("failed to initialize playlist service", logger.ErrorField(err))
		}
		defer a.close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var watcher *cache.Watcher
		if a.songCache != nil {
			watcher, err = cache.NewWatcher(a.songCache)
			if err != nil {
				logger.Warn("local playlist changes will not invalidate the cache", logger.ErrorField(err))
			} else {
				go watcher.Run(ctx)
			}
		}

		opts := server.Options{
			Playlists: server.NewPlaylistHandler(a.resolver, a.songCache, watcher, a.opener.ConfinedPath),
			JWTSecret: cfg.JWTSecret,
		}
		if a.repo != nil {
			opts.Library = server.NewLibraryHandler(a.repo, a.songCache)
		}

		addr := cfg.ServerAddr
		if serverAddr != "" {
			addr = serverAddr
		}
		if err := server.Start(addr, server.NewRouter(opts)); err != nil {
			logger.Error("server exited", logger.ErrorField(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().StringVarP(&serverAddr, "addr", "a", "", "监听地址，默认使用 SERVER_ADDR")
}

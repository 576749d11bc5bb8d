package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"PlaylistFM/config"
	"PlaylistFM/logger"
)

// cfg 在任何子命令运行前加载
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "playlistfm",
	Short: "PlaylistFM 歌单解析服务",
	Long:  `PlaylistFM 把本地文件、网络地址和 SoundCloud 等来源的歌单解析成统一的歌曲列表。`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"PlaylistFM/cache"
	"PlaylistFM/logger"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `测试歌单缓存使用的Redis连接是否成功，并进行基本读写操作。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始测试Redis连接...")
		fmt.Printf("Redis配置: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := cache.ConnectRedis(cfg); err != nil {
			logger.Fatal("无法连接到Redis", logger.ErrorField(err))
		}
		fmt.Println("Redis连接成功！")

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := cache.CheckRedis(ctx, cache.RedisClient); err != nil {
			logger.Fatal("Redis操作测试失败", logger.ErrorField(err))
		}
		fmt.Println("Redis基本操作测试成功！")

		if err := cache.CloseRedis(); err != nil {
			logger.Warn("关闭Redis连接时发生错误", logger.ErrorField(err))
		}
		fmt.Println("Redis测试完成，连接已关闭。")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"PlaylistFM/core/auth"
	"PlaylistFM/logger"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "签发访问 token",
	Long:  `用 JWT_SECRET 签发访问 /api 和 /ws 的 Bearer token。`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token, err := auth.GenerateToken(cfg.JWTSecret, args[0], tokenTTL)
		if err != nil {
			logger.Fatal("failed to generate token", logger.ErrorField(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "有效期，0 表示不过期")
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"PlaylistFM/core/utils"
	"PlaylistFM/logger"
	"PlaylistFM/model"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <uri|path>...",
	Short: "解析歌单并打印歌曲",
	Long: `解析一个或多个歌单。本地路径先按当前目录查找，找不到时按 MUSIC_DIR 解析；
带协议的地址先交给 URI 插件，再按 MIME 类型和后缀解析下载到的内容。`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if failed := resolveAll(cmd, args); failed > 0 {
			os.Exit(1)
		}
	},
}

// resolveAll 逐个解析并输出，返回失败的个数
func resolveAll(cmd *cobra.Command, args []string) int {
	a, err := newApp(cfg, appOptions{})
	if err != nil {
		logger.Fatal("failed to initialize playlist plugins", logger.ErrorField(err))
	}
	defer a.close()

	out := cmd.OutOrStdout()
	failed := 0
	for _, arg := range args {
		songs, ok := a.resolver.Songs(cmd.Context(), cliPath(arg))
		if !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: no playlist plugin can handle it\n", arg)
			failed++
			continue
		}
		if resolveJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(map[string]any{"uri": arg, "songs": songs}); err != nil {
				logger.Error("failed to write songs", logger.ErrorField(err))
			}
			continue
		}
		printSongs(out, arg, songs)
	}
	return failed
}

// cliPath 命令行里的相对路径优先按当前目录解析
func cliPath(arg string) string {
	if utils.HasScheme(arg) || filepath.IsAbs(arg) {
		return arg
	}
	if _, err := os.Stat(arg); err != nil {
		return arg
	}
	if abs, err := filepath.Abs(arg); err == nil {
		return abs
	}
	return arg
}

func printSongs(w io.Writer, uri string, songs []model.Song) {
	fmt.Fprintf(w, "%s (%d songs)\n", uri, len(songs))
	for i, s := range songs {
		line := fmt.Sprintf("%4d. %s", i+1, s.URI)
		if s.Tag != nil {
			if s.Tag.Title != "" {
				line += "  " + s.Tag.Title
				if s.Tag.Artist != "" {
					line += " - " + s.Tag.Artist
				}
			}
			if s.Tag.Duration > 0 {
				line += fmt.Sprintf(" [%d:%02d]", s.Tag.Duration/60, s.Tag.Duration%60)
			}
		}
		fmt.Fprintln(w, line)
	}
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "以 JSON 输出")
}

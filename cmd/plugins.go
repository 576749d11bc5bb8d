package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"PlaylistFM/logger"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "列出歌单插件",
	Long:  `按匹配优先级列出全部歌单插件、启用状态以及声明的协议、后缀和 MIME 类型。`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(cfg, appOptions{})
		if err != nil {
			logger.Fatal("failed to initialize playlist plugins", logger.ErrorField(err))
		}
		defer a.close()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tENABLED\tSCHEMES\tSUFFIXES\tMIME TYPES")
		for _, e := range a.registry.Entries() {
			d := e.Descriptor()
			fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n",
				d.Name, e.Enabled(), joinOrDash(d.Schemes), joinOrDash(d.Suffixes), joinOrDash(d.MimeTypes))
		}
		tw.Flush()
	},
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ",")
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

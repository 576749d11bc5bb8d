package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"PlaylistFM/logger"
	"PlaylistFM/storage"
)

var (
	minioPrefix string
	minioUpload string
	minioName   string
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO歌单管理",
	Long:  `列出或上传存储桶中的歌单文件。上传后的歌单可以用 minio://<bucket>/<name> 解析。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始连接MinIO服务器...")
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(cfg); err != nil {
			logger.Fatal("无法连接到MinIO", logger.ErrorField(err))
		}
		fmt.Println("MinIO连接成功！")
		client := storage.GetMinioClient()
		ctx := cmd.Context()

		if minioUpload != "" {
			f, err := os.Open(minioUpload)
			if err != nil {
				logger.Fatal("打开歌单文件失败", logger.ErrorField(err))
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				logger.Fatal("读取文件信息失败", logger.ErrorField(err))
			}

			name := minioName
			if name == "" {
				name = minioPrefix + filepath.Base(minioUpload)
			}
			if err := storage.UploadPlaylist(ctx, client, cfg.MinioBucket, name, f, info.Size()); err != nil {
				logger.Fatal("上传歌单失败", logger.ErrorField(err))
			}
			fmt.Printf("已上传: minio://%s/%s (%s, %s)\n",
				cfg.MinioBucket, name, storage.FormatSize(info.Size()), storage.ContentTypeFor(name))
			return
		}

		fmt.Printf("\n列出存储桶中的歌单 (前缀: %s)...\n", minioPrefix)
		objects, err := storage.ListPlaylists(ctx, client, cfg.MinioBucket, minioPrefix)
		if err != nil {
			logger.Fatal("列出文件失败", logger.ErrorField(err))
		}
		for _, o := range objects {
			fmt.Printf("  %-50s %10s  %s\n", o.Key, storage.FormatSize(o.Size), o.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("\n共 %d 个文件\n", len(objects))
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "按前缀过滤文件，上传时作为对象名前缀")
	minioCmd.Flags().StringVarP(&minioUpload, "upload", "u", "", "要上传的本地歌单文件")
	minioCmd.Flags().StringVarP(&minioName, "name", "n", "", "上传后的对象名，默认使用前缀加文件名")

	minioCmd.Example = `  # 列出所有歌单
  playlistfm minio

  # 按前缀过滤
  playlistfm minio -p "radio/"

  # 上传歌单
  playlistfm minio -u ./jazz.m3u -p "radio/"`
}

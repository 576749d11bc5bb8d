package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// ObjectInfo 存储桶里的一个歌单文件
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// playlistContentTypes 歌单后缀对应的 Content-Type，与各插件声明的 MIME 类型一致
var playlistContentTypes = map[string]string{
	"m3u":  "audio/x-mpegurl",
	"pls":  "audio/x-scpls",
	"xspf": "application/xspf+xml",
	"asx":  "video/x-ms-asf",
	"rss":  "application/rss+xml",
}

// ContentTypeFor 根据对象名推断歌单的 Content-Type，未知后缀返回 application/octet-stream
func ContentTypeFor(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ct, ok := playlistContentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ListPlaylists 列出存储桶中指定前缀下的对象
func ListPlaylists(ctx context.Context, client *minio.Client, bucket, prefix string) ([]ObjectInfo, error) {
	if client == nil {
		return nil, fmt.Errorf("MinIO 客户端未初始化")
	}

	var objects []ObjectInfo
	for object := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
		})
	}
	return objects, nil
}

// UploadPlaylist 上传歌单文件，Content-Type 按后缀设置，
// 之后可以用 minio://<bucket>/<name> 解析
func UploadPlaylist(ctx context.Context, client *minio.Client, bucket, name string, r io.Reader, size int64) error {
	if client == nil {
		return fmt.Errorf("MinIO 客户端未初始化")
	}
	_, err := client.PutObject(ctx, bucket, name, r, size, minio.PutObjectOptions{
		ContentType: ContentTypeFor(name),
	})
	if err != nil {
		return fmt.Errorf("上传歌单失败: %w", err)
	}
	return nil
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

package input

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"PlaylistFM/core/utils"
)

// Registry 按协议把 URI 分发到具体的传输实现。
// 没有协议的字符串当作本地路径，相对路径基于 baseDir 解析。
type Registry struct {
	http    *HTTPOpener
	minio   *MinioOpener
	baseDir string
}

// NewRegistry 创建传输注册表，minio 可以为 nil
func NewRegistry(httpOpener *HTTPOpener, minioOpener *MinioOpener, baseDir string) *Registry {
	if httpOpener == nil {
		httpOpener = NewHTTPOpener()
	}
	return &Registry{http: httpOpener, minio: minioOpener, baseDir: baseDir}
}

// Open 实现 Opener
func (r *Registry) Open(ctx context.Context, uri string) (Stream, error) {
	scheme, ok := utils.URIScheme(uri)
	if !ok {
		return OpenFile(r.LocalPath(uri))
	}
	switch strings.ToLower(scheme) {
	case "http", "https":
		return r.http.Open(ctx, uri)
	case MinioScheme:
		if r.minio == nil {
			return nil, fmt.Errorf("%w: %s (minio not configured)", ErrUnsupportedScheme, scheme)
		}
		return r.minio.Open(ctx, uri)
	case "file":
		return OpenFile(strings.TrimPrefix(uri, scheme+"://"))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

// LocalPath 把相对路径解析到 baseDir 下
func (r *Registry) LocalPath(path string) string {
	if filepath.IsAbs(path) || r.baseDir == "" {
		return path
	}
	return filepath.Join(r.baseDir, path)
}

// ConfinedPath 和 LocalPath 一样解析路径，但结果必须落在 baseDir 内。
// 绝对路径和 file:// 也要满足这一点，返回清理后的绝对路径。
func (r *Registry) ConfinedPath(path string) (string, error) {
	if r.baseDir == "" {
		return "", fmt.Errorf("%w: no playlist directory configured", ErrOutsideBaseDir)
	}
	base, err := filepath.Abs(r.baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve playlist directory: %w", err)
	}

	if scheme, ok := utils.URIScheme(path); ok {
		if !strings.EqualFold(scheme, "file") {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
		}
		path = path[len(scheme)+len("://"):]
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBaseDir, path)
	}
	return target, nil
}

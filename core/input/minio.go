package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
)

// MinioScheme 是对象存储中歌单文件使用的协议，形如 minio://bucket/path/list.m3u
const MinioScheme = "minio"

// MinioOpener 从 MinIO 读取歌单对象
type MinioOpener struct {
	client *minio.Client
}

// NewMinioOpener 使用已初始化的 MinIO 客户端
func NewMinioOpener(client *minio.Client) *MinioOpener {
	return &MinioOpener{client: client}
}

// ParseMinioURI 拆出 bucket 和对象名
func ParseMinioURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, MinioScheme+"://")
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid minio URI %q: want minio://bucket/object", uri)
	}
	return bucket, object, nil
}

// Open 获取对象句柄；对象元数据在 WaitReady 中读取
func (o *MinioOpener) Open(ctx context.Context, uri string) (Stream, error) {
	bucket, object, err := ParseMinioURI(uri)
	if err != nil {
		return nil, err
	}
	obj, err := o.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, object, err)
	}
	return &minioStream{obj: obj, uri: uri}, nil
}

// minioStream 包装 minio.Object，它本身已经支持 Read/Seek
type minioStream struct {
	obj *minio.Object
	uri string

	once     sync.Once
	mimeType string
	statErr  error
	eof      bool
}

func (s *minioStream) URI() string { return s.uri }

func (s *minioStream) WaitReady(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.once.Do(func() {
		info, err := s.obj.Stat()
		if err != nil {
			s.statErr = fmt.Errorf("stat %s: %w", s.uri, err)
			return
		}
		s.mimeType = info.ContentType
	})
	return s.statErr
}

func (s *minioStream) MimeType() string { return s.mimeType }

func (s *minioStream) IsEOF() bool { return s.eof }

func (s *minioStream) Read(p []byte) (int, error) {
	n, err := s.obj.Read(p)
	if errors.Is(err, io.EOF) {
		s.eof = true
	}
	return n, err
}

func (s *minioStream) Seek(offset int64, whence int) (int64, error) {
	pos, err := s.obj.Seek(offset, whence)
	if err == nil {
		s.eof = false
	}
	return pos, err
}

func (s *minioStream) Close() error {
	return s.obj.Close()
}

package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// fileStream 本地文件流，打开即就绪；本地文件不声明 MIME 类型
type fileStream struct {
	f   *os.File
	uri string
	eof bool
}

// OpenFile 打开本地文件
func OpenFile(path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("open %s: not a regular file", path)
	}
	return &fileStream{f: f, uri: path}, nil
}

func (s *fileStream) URI() string { return s.uri }

func (s *fileStream) WaitReady(ctx context.Context) error {
	return ctx.Err()
}

func (s *fileStream) MimeType() string { return "" }

func (s *fileStream) IsEOF() bool { return s.eof }

func (s *fileStream) Read(p []byte) (int, error) {
	n, err := s.f.Read(p)
	if errors.Is(err, io.EOF) {
		s.eof = true
	}
	return n, err
}

func (s *fileStream) Seek(offset int64, whence int) (int64, error) {
	pos, err := s.f.Seek(offset, whence)
	if err == nil {
		s.eof = false
	}
	return pos, err
}

func (s *fileStream) Close() error {
	return s.f.Close()
}

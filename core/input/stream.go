// Package input 提供歌单解析用到的字节流传输层：本地文件、HTTP(S) 和 MinIO 对象。
//
// 所有流都支持回到开头重新读取，因为歌单引擎在依次尝试多个插件之前
// 都会 Seek(0, io.SeekStart)。
package input

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrUnsupportedScheme 没有传输实现能处理该协议
	ErrUnsupportedScheme = errors.New("input: unsupported URI scheme")
	// ErrNotSeekable 流无法定位到请求的位置
	ErrNotSeekable = errors.New("input: stream is not seekable to the requested offset")
	// ErrClosed 流已经关闭
	ErrClosed = errors.New("input: stream closed")
	// ErrOutsideBaseDir 本地路径不在歌单目录下
	ErrOutsideBaseDir = errors.New("input: path is outside the playlist directory")
)

// Stream 是一个可回绕的输入流。
// Read 遵循 io.Reader 语义；IsEOF 用于区分 0 字节读取是结束还是出错。
type Stream interface {
	io.Reader
	io.Seeker
	io.Closer

	// URI 返回打开这个流时使用的地址
	URI() string
	// WaitReady 阻塞直到流可读（响应头到达、对象元数据可用），或 ctx 结束
	WaitReady(ctx context.Context) error
	// MimeType 返回传输层声明的内容类型，未知时为空串；需在 WaitReady 之后调用
	MimeType() string
	// IsEOF 报告上一次读取是否已经到达流末尾
	IsEOF() bool
}

// Opener 按 URI 或本地路径打开输入流
type Opener interface {
	Open(ctx context.Context, uri string) (Stream, error)
}

// OpenerFunc 让普通函数实现 Opener
type OpenerFunc func(ctx context.Context, uri string) (Stream, error)

// Open 实现 Opener
func (f OpenerFunc) Open(ctx context.Context, uri string) (Stream, error) {
	return f(ctx, uri)
}

// OpenReady 打开流并等待就绪，失败时负责关闭
func OpenReady(ctx context.Context, opener Opener, uri string) (Stream, error) {
	s, err := opener.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := s.WaitReady(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

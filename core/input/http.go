package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// DefaultMaxSpool 是 HTTP 流为支持回绕而缓存的最大字节数
const DefaultMaxSpool = 8 << 20

// HTTPOpener 打开 HTTP(S) 流
type HTTPOpener struct {
	httpClient *http.Client
	maxSpool   int
	userAgent  string
}

// NewHTTPOpener 创建 HTTP 传输
func NewHTTPOpener() *HTTPOpener {
	return &HTTPOpener{
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
		maxSpool:  DefaultMaxSpool,
		userAgent: "PlaylistFM/1.0",
	}
}

// SetTimeout 设置请求超时时间
func (o *HTTPOpener) SetTimeout(timeout time.Duration) {
	o.httpClient.Timeout = timeout
}

// SetHTTPClient 替换底层 http.Client，测试里用 httptest 的客户端
func (o *HTTPOpener) SetHTTPClient(c *http.Client) {
	if c != nil {
		o.httpClient = c
	}
}

// SetMaxSpool 设置回绕缓存上限
func (o *HTTPOpener) SetMaxSpool(n int) {
	o.maxSpool = n
}

// Open 在后台发起请求并立即返回，响应头到达后 WaitReady 才返回
func (o *HTTPOpener) Open(ctx context.Context, uri string) (Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build request for %s: %w", uri, err)
	}
	req.Header.Set("User-Agent", o.userAgent)

	s := &httpStream{
		uri:      uri,
		ready:    make(chan struct{}),
		maxSpool: o.maxSpool,
		cancel:   cancel,
	}
	go s.fetch(o.httpClient, req)
	return s, nil
}

// httpStream 把已经读过的字节缓存下来，从而支持 Seek 回到已读区域
type httpStream struct {
	uri      string
	ready    chan struct{}
	maxSpool int
	cancel   context.CancelFunc

	// fetch 完成后只读
	resp   *http.Response
	reqErr error

	mu       sync.Mutex
	spool    []byte
	pos      int64
	dropped  bool // 超过 maxSpool 后不再缓存
	bodyDone bool
	eof      bool
	closed   bool
}

func (s *httpStream) fetch(client *http.Client, req *http.Request) {
	defer close(s.ready)
	resp, err := client.Do(req)
	if err != nil {
		s.reqErr = fmt.Errorf("request %s: %w", s.uri, err)
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		s.reqErr = fmt.Errorf("request %s: got HTTP status %d", s.uri, resp.StatusCode)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		resp.Body.Close()
		s.reqErr = ErrClosed
		return
	}
	s.resp = resp
}

func (s *httpStream) URI() string { return s.uri }

func (s *httpStream) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return s.reqErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *httpStream) isReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

func (s *httpStream) MimeType() string {
	if !s.isReady() || s.resp == nil {
		return ""
	}
	return s.resp.Header.Get("Content-Type")
}

func (s *httpStream) IsEOF() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eof
}

func (s *httpStream) Read(p []byte) (int, error) {
	<-s.ready
	if s.reqErr != nil {
		return 0, s.reqErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	// 先从缓存里读
	if !s.dropped && s.pos < int64(len(s.spool)) {
		n := copy(p, s.spool[s.pos:])
		s.pos += int64(n)
		return n, nil
	}
	if s.bodyDone {
		s.eof = true
		return 0, io.EOF
	}

	n, err := s.resp.Body.Read(p)
	if n > 0 {
		s.record(p[:n])
		s.pos += int64(n)
	}
	if errors.Is(err, io.EOF) {
		s.bodyDone = true
		if n == 0 {
			s.eof = true
		}
		if n > 0 {
			err = nil
		}
	}
	return n, err
}

func (s *httpStream) record(b []byte) {
	if s.dropped {
		return
	}
	if len(s.spool)+len(b) > s.maxSpool {
		s.dropped = true
		s.spool = nil
		return
	}
	s.spool = append(s.spool, b...)
}

// Seek 支持定位到已缓存区域内的任意位置，向前越过缓存时会读取并丢弃数据
func (s *httpStream) Seek(offset int64, whence int) (int64, error) {
	<-s.ready
	if s.reqErr != nil {
		return 0, s.reqErr
	}

	s.mu.Lock()
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.pos + offset
	default:
		s.mu.Unlock()
		return s.pos, ErrNotSeekable
	}

	var skip int64
	switch {
	case target < 0:
		s.mu.Unlock()
		return s.pos, ErrNotSeekable
	case target == s.pos:
	case !s.dropped && target <= int64(len(s.spool)):
		s.pos = target
	case target > s.pos:
		if !s.dropped {
			s.pos = int64(len(s.spool))
		}
		skip = target - s.pos
	default:
		// 缓存已经丢弃，无法回退
		s.mu.Unlock()
		return s.pos, ErrNotSeekable
	}
	s.eof = false
	s.mu.Unlock()

	if skip > 0 {
		if _, err := io.CopyN(io.Discard, s, skip); err != nil {
			return target - skip, fmt.Errorf("seek %s: %w", s.uri, err)
		}
	}
	return target, nil
}

func (s *httpStream) Close() error {
	// Read 持锁阻塞在 Body.Read 上，先取消请求才能拿到锁
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.spool = nil
	if s.resp != nil {
		return s.resp.Body.Close()
	}
	return nil
}

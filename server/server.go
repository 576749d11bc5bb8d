// Package server 通过 HTTP 和 websocket 暴露歌单解析服务。
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"PlaylistFM/logger"
)

// Options 路由需要的处理器和鉴权配置
type Options struct {
	Playlists *PlaylistHandler
	// Library 为 nil 时不注册 /api/library 路由
	Library *LibraryHandler
	// JWTSecret 非空时 /api 和 /ws 需要 Bearer token
	JWTSecret string
}

// NewRouter 注册全部路由
func NewRouter(opts Options) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogMiddleware, corsMiddleware)

	// mux 只对匹配到的路由执行中间件，预检请求需要一个兜底路由
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	ws := router.PathPrefix("/ws").Subrouter()
	if opts.JWTSecret != "" {
		api.Use(authMiddleware(opts.JWTSecret))
		ws.Use(authMiddleware(opts.JWTSecret))
	}

	// 歌单解析
	api.HandleFunc("/playlist/plugins", opts.Playlists.PluginsHandler).Methods(http.MethodGet)
	api.HandleFunc("/playlist/resolve", opts.Playlists.ResolveHandler).Methods(http.MethodGet)
	ws.HandleFunc("/playlist/resolve", opts.Playlists.ResolveWSHandler).Methods(http.MethodGet)

	// 已保存歌单
	if opts.Library != nil {
		api.HandleFunc("/library", opts.Library.ListHandler).Methods(http.MethodGet)
		api.HandleFunc("/library/{name}", opts.Library.GetHandler).Methods(http.MethodGet)
		api.HandleFunc("/library/{name}", opts.Library.SaveHandler).Methods(http.MethodPut)
		api.HandleFunc("/library/{name}", opts.Library.DeleteHandler).Methods(http.MethodDelete)
	}

	return router
}

// Start 启动 HTTP 服务，收到中断信号后优雅关闭
func Start(addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"muni-join/internal/logger"
	"muni-join/internal/middleware"
)

// Serve：在 addr 上暴露 /metrics，直到 ctx 取消
// 约束：addr 为空时直接返回 nil；mw 为空时不包装
func Serve(ctx context.Context, addr string, mw func(http.Handler) http.Handler, l *slog.Logger) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	var h http.Handler = Handler()
	if mw != nil {
		h = mw(h)
	}
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	l.Info("metrics_listen", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeFromEnv：METRICS_ADDR 为空时不监听；访问日志在外层，白名单（METRICS_ALLOW）在内层
func ServeFromEnv(ctx context.Context, l *slog.Logger) error {
	allow, err := middleware.AllowlistFromEnv(l)
	if err != nil {
		return err
	}
	mw := middleware.Chain(logger.AccessMiddleware(l), allow.Wrap)
	return Serve(ctx, os.Getenv("METRICS_ADDR"), mw, l)
}

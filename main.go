package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ncarrasb/Snake-Online-Laura-Nacho/server"
)

// 入口：启动 HTTP + WebSocket 服务，并初始化同步引擎
func main() {
	cfg := server.LoadConfig()

	var addr string
	flag.StringVar(&addr, "addr", cfg.Addr(), "server listen address, e.g. :8080")
	flag.Parse()

	// 使用第三方 zap 日志库写入控制台与 app.log（带滚动）
	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	gin.SetMode(cfg.GinMode)
	engine := server.NewEngine()
	srv := &http.Server{Addr: addr, Handler: server.NewRouter(engine)}

	go func() {
		server.Log.Infof("WS ready on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Errorf("shutdown: %v", err)
	}
}

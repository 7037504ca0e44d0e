package server

import (
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter 挂载 WebSocket 接入与监控接口
func NewRouter(e *Engine) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/ws", gin.WrapF(NewWSHandler(e)))
	NewAdminServer(e).Register(router)
	return router
}

// requestLogger 用 zap 记录 HTTP 请求（替代 gin 默认的 stdout 日志）
func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		Log.Debugw("http request",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", ctx.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminServer 只读的监控接口
type AdminServer struct {
	engine *Engine
}

func NewAdminServer(e *Engine) *AdminServer {
	return &AdminServer{engine: e}
}

// Register 注册路由
func (a *AdminServer) Register(route gin.IRoutes) {
	route.GET("/healthz", a.healthz)
	route.GET("/metrics", a.metrics)
	route.GET("/players", a.players)
}

func (a *AdminServer) healthz(ctx *gin.Context) {
	ctx.String(http.StatusOK, "ok")
}

// metrics 输出引擎运行指标
// GET /metrics
func (a *AdminServer) metrics(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, a.engine.Metrics().Snapshot())
}

// players 输出当前在线玩家与水果位置
// GET /players
func (a *AdminServer) players(ctx *gin.Context) {
	ps := a.engine.Players()
	states := make([]PlayerState, 0, len(ps))
	for _, p := range ps {
		states = append(states, p.State())
	}
	ctx.JSON(http.StatusOK, gin.H{
		"players": states,
		"fruit":   a.engine.Fruit(),
	})
}

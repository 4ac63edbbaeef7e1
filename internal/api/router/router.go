package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"time-tracker/config"
	"time-tracker/internal/api/handler"
	"time-tracker/internal/api/middleware"
	"time-tracker/pkg/metrics"
	"time-tracker/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil（写接口限流降级放行）
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	writeLimit := middleware.RateLimit(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window)

	// ── 打卡模块 ──
	times := r.Group("/time")
	{
		times.POST("", writeLimit, h.TimeEntry.CreateTime)
		times.GET("", h.TimeEntry.GetAllTime)
		times.GET("/export", h.Export.ExportTime)
		times.GET("/:id", h.TimeEntry.GetTimeByID)
		times.PUT("/:id", writeLimit, h.TimeEntry.UpdateTime)
		times.DELETE("/:id", writeLimit, h.TimeEntry.DeleteTime)
	}

	return r
}

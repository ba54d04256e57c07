package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smart-campus/backend/config"
	"smart-campus/backend/internal/api/handler"
	"smart-campus/backend/internal/api/middleware"
	"smart-campus/backend/pkg/redis"
)

// maxBodyBytes 请求体上限；本服务只有预约接口接收 JSON 请求体
const maxBodyBytes = 64 << 10

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时预约限流使用进程内令牌桶
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", h.Health.Health)

	var counter middleware.RateCounter
	if rdb != nil {
		counter = rdb
	}
	reserveLimit := middleware.RateLimit(counter, cfg.Reserve.RateLimit, time.Minute, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		v1.GET("/buildings", h.Room.ListBuildings)

		rooms := v1.Group("/rooms")
		{
			rooms.GET("", h.Room.ListRooms)
			rooms.GET("/free-now", h.Room.FreeNow)
			rooms.POST("/reserve", reserveLimit, h.Reservation.Reserve)

			rooms.GET("/:id/timeline", h.Room.GetTimeline)
			rooms.GET("/:id/timeline/export", h.Export.ExportTimeline)
			rooms.GET("/:id/calendar.ics", h.Export.ExportCalendar)
			rooms.GET("/:id/raw-timetable", h.Room.GetRawTimetable)
			rooms.GET("/:id/reservations", h.Reservation.ListReservations)
		}
	}

	return r
}

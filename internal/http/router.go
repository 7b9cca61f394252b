package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"tripnotify/internal/config"
	"tripnotify/internal/http/controller"
	"tripnotify/internal/http/middleware"
)

func NewRouter(cfg *config.Config, handler *controller.Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		otelgin.Middleware(cfg.OTELServiceName),
		middleware.ZapLogger(logger),
		middleware.ZapRecovery(logger),
		middleware.Metrics(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.Status(200)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := router.Group("/", middleware.RecipientAuth(cfg.JWTSecret))
	authed.GET("/notifications", handler.ListNotifications)
	authed.GET("/notifications/unread-count", handler.UnreadCount)
	authed.POST("/notifications", handler.CreateNotification)
	authed.POST("/notifications/read", handler.MarkRead)
	authed.POST("/notifications/read-all", handler.MarkAllRead)
	authed.DELETE("/notifications/:id", handler.DeleteNotification)
	authed.POST("/events/fan-out", handler.FanOut)
	authed.POST("/events/publish", handler.PublishEvent)
	authed.GET("/notifications/stream", handler.Stream)

	return router
}

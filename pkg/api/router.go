// Package api 实现dashboard的HTTP API服务器
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/api/handler"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/api/middleware"
	"github.com/path-yu/xiaohongshu-dashboard-sub000/pkg/core/engine"
)

// SetupRouter 设置路由
func SetupRouter(eng *engine.Engine, version string) *gin.Engine {
	router := gin.New()

	// 全局中间件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	// 创建handlers
	taskHandler := handler.NewTaskHandler(eng)
	templateHandler := handler.NewTemplateHandler(eng.Store().Templates)
	settingHandler := handler.NewSettingHandler(eng.Store().Settings)
	streamHandler := handler.NewStreamHandler(eng.Broadcaster())
	healthHandler := handler.NewHealthHandler(version)

	// 健康检查路由（不带前缀）
	router.GET("/health", healthHandler.Health)

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		tasks := v1.Group("/tasks")
		{
			tasks.GET("", taskHandler.List)
			tasks.POST("", taskHandler.Create)
			tasks.GET("/sse", streamHandler.SSE)
			tasks.GET("/ws", streamHandler.WS)
			tasks.GET("/:id", taskHandler.Get)
			tasks.PUT("/:id", taskHandler.Update)
			tasks.DELETE("/:id", taskHandler.Delete)
			tasks.POST("/:id/status", taskHandler.ChangeStatus)
			tasks.GET("/:id/logs", taskHandler.Logs)
		}

		templates := v1.Group("/templates")
		{
			templates.GET("", templateHandler.List)
			templates.POST("", templateHandler.Create)
			templates.PUT("/:id", templateHandler.Update)
			templates.DELETE("/:id", templateHandler.Delete)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("", settingHandler.Get)
			settings.PUT("", settingHandler.Update)
		}
	}

	return router
}

// Package router 设置 HTTP 路由
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/recall/internal/handler"
	"github.com/ashwinyue/recall/internal/middleware"
	"github.com/ashwinyue/recall/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, svc *service.Services) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Auth 认证（无需令牌）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// Tenant 租户（注册前创建，无需令牌）
		tenants := v1.Group("/tenants")
		{
			tenants.POST("", h.Tenant.Create)
			tenants.GET("/:id", h.Tenant.Get)
		}

		// 业务接口需要有效令牌
		authed := v1.Group("")
		authed.Use(middleware.RequireAuth(svc))
		{
			// Prompt 提问
			authed.POST("/prompts", h.Prompt.Submit)

			// Feedback 反馈
			authed.POST("/feedback", h.Feedback.Submit)

			// Analytics 统计
			authed.GET("/analytics/tenant", h.Analytics.TenantDashboard)

			// Answer 答案查询
			answers := authed.Group("/answers")
			{
				answers.GET("", h.Answer.List)
				answers.GET("/:id", h.Answer.Get)
			}

			// Document 文档
			docs := authed.Group("/documents")
			{
				docs.POST("", h.Document.Upload)
				docs.GET("", h.Document.List)
				docs.GET("/:id", h.Document.Get)
				docs.POST("/:id/process", h.Document.Process)
			}
		}
	}

	return r
}

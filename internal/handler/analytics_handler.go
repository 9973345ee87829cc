package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/recall/internal/middleware"
	"github.com/ashwinyue/recall/internal/service"
)

// AnalyticsHandler 统计处理器
type AnalyticsHandler struct {
	svc *service.Services
}

// NewAnalyticsHandler 创建统计处理器
func NewAnalyticsHandler(svc *service.Services) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// TenantDashboard 租户质量看板
// GET /api/v1/analytics/tenant
func (h *AnalyticsHandler) TenantDashboard(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		Unauthorized(c, "tenant not resolved")
		return
	}

	dashboard, err := h.svc.Analytics.TenantDashboard(tenantID)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	Success(c, dashboard)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/recall/internal/service"
	"github.com/ashwinyue/recall/internal/service/tenant"
)

// TenantHandler 租户处理器
type TenantHandler struct {
	svc *service.Services
}

// NewTenantHandler 创建租户处理器
func NewTenantHandler(svc *service.Services) *TenantHandler {
	return &TenantHandler{svc: svc}
}

// Create 创建租户
// POST /api/v1/tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var req tenant.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	t, err := h.svc.Tenant.Create(&req)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	Created(c, t)
}

// Get 获取租户
// GET /api/v1/tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	t, err := h.svc.Tenant.Get(c.Param("id"))
	if err != nil {
		NotFound(c, "tenant not found")
		return
	}
	Success(c, t)
}

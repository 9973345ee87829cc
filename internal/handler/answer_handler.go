package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/recall/internal/middleware"
	"github.com/ashwinyue/recall/internal/service"
)

// AnswerHandler 答案查询处理器
type AnswerHandler struct {
	svc *service.Services
}

// NewAnswerHandler 创建答案查询处理器
func NewAnswerHandler(svc *service.Services) *AnswerHandler {
	return &AnswerHandler{svc: svc}
}

// List 按租户列出答案
// GET /api/v1/answers?status=canonical&page=1&page_size=20
func (h *AnswerHandler) List(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		Unauthorized(c, "tenant not resolved")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	status := c.Query("status")

	answers, total, err := h.svc.Analytics.ListAnswers(tenantID, status, (page-1)*pageSize, pageSize)
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	SuccessWithPagination(c, answers, total, page, pageSize)
}

// Get 获取单个答案
// GET /api/v1/answers/:id
func (h *AnswerHandler) Get(c *gin.Context) {
	answer, err := h.svc.Analytics.GetAnswer(c.Param("id"))
	if err != nil {
		InternalServerError(c, err.Error())
		return
	}
	if answer == nil || answer.TenantID != middleware.GetTenantID(c) {
		NotFound(c, "answer not found")
		return
	}
	Success(c, answer)
}

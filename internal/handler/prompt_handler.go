package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/recall/internal/middleware"
	"github.com/ashwinyue/recall/internal/service"
	"github.com/ashwinyue/recall/internal/service/gate"
	"github.com/ashwinyue/recall/internal/service/pipeline"
)

// PromptHandler 提问处理器
type PromptHandler struct {
	svc *service.Services
}

// NewPromptHandler 创建提问处理器
func NewPromptHandler(svc *service.Services) *PromptHandler {
	return &PromptHandler{svc: svc}
}

// SubmitPromptRequest 提问请求体
type SubmitPromptRequest struct {
	PromptText string `json:"prompt_text" binding:"required"`
	Model      string `json:"model"`
}

// Submit 提交提问
// POST /api/v1/prompts
func (h *PromptHandler) Submit(c *gin.Context) {
	var req SubmitPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "prompt_text is required")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		Unauthorized(c, "user not authenticated")
		return
	}
	tenantID := middleware.GetTenantID(c)
	if tenantID == "" {
		Unauthorized(c, "tenant not resolved")
		return
	}

	resp, err := h.svc.Pipeline.Submit(c.Request.Context(), &pipeline.SubmitRequest{
		TenantID:   tenantID,
		UserID:     userID,
		PromptText: req.PromptText,
		Model:      req.Model,
	})
	if err != nil {
		switch {
		case errors.Is(err, gate.ErrFeedbackPending):
			Forbidden(c, err.Error())
		case errors.Is(err, pipeline.ErrEmptyPrompt):
			BadRequest(c, err.Error())
		case errors.Is(err, pipeline.ErrGenerationFailed):
			BadGateway(c, "answer generation failed, please retry")
		default:
			InternalServerError(c, err.Error())
		}
		return
	}

	Created(c, resp)
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/recall/internal/service"
	"github.com/ashwinyue/recall/internal/service/feedback"
)

// FeedbackHandler 反馈处理器
type FeedbackHandler struct {
	svc *service.Services
}

// NewFeedbackHandler 创建反馈处理器
func NewFeedbackHandler(svc *service.Services) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

// SubmitFeedbackRequest 反馈请求体
type SubmitFeedbackRequest struct {
	InteractionID string `json:"interaction_id" binding:"required"`
	Rating        int    `json:"rating" binding:"required"`
}

// Submit 提交反馈
// POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "interaction_id and rating are required")
		return
	}

	result, err := h.svc.Feedback.Process(c.Request.Context(), req.InteractionID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, feedback.ErrInvalidRating):
			BadRequest(c, err.Error())
		case errors.Is(err, feedback.ErrInteractionNotFound):
			NotFound(c, err.Error())
		case errors.Is(err, feedback.ErrAlreadyRated):
			Conflict(c, err.Error())
		default:
			InternalServerError(c, err.Error())
		}
		return
	}

	Success(c, result)
}

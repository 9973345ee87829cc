// Package handler 提供 HTTP 处理器
package handler

import (
	"github.com/ashwinyue/recall/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Prompt    *PromptHandler
	Feedback  *FeedbackHandler
	Analytics *AnalyticsHandler
	Answer    *AnswerHandler
	Document  *DocumentHandler
	Auth      *AuthHandler
	Tenant    *TenantHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Prompt:    NewPromptHandler(svc),
		Feedback:  NewFeedbackHandler(svc),
		Analytics: NewAnalyticsHandler(svc),
		Answer:    NewAnswerHandler(svc),
		Document:  NewDocumentHandler(svc),
		Auth:      NewAuthHandler(svc),
		Tenant:    NewTenantHandler(svc),
	}
}

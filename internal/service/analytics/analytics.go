// Package analytics 提供租户维度的质量统计
package analytics

import (
	"fmt"

	"github.com/ashwinyue/recall/internal/model"
)

// AnswerStats 答案统计与查询
type AnswerStats interface {
	CountByStatus(tenantID string) (map[string]int64, error)
	TopCanonical(tenantID string) (*model.Answer, error)
	ListByTenant(tenantID, status string, offset, limit int) ([]*model.Answer, int64, error)
	GetByID(id string) (*model.Answer, error)
}

// TenantStats 租户评分统计读取
type TenantStats interface {
	GetStats(tenantID string) (*model.TenantStats, error)
}

// StatusDistribution 答案状态分布
type StatusDistribution struct {
	Candidate  int64 `json:"candidate"`
	Canonical  int64 `json:"canonical"`
	Quarantine int64 `json:"quarantine"`
}

// Dashboard 租户质量看板
type Dashboard struct {
	TenantID            string             `json:"tenant_id"`
	TotalReviews        int64              `json:"total_reviews"`
	GlobalAverageRating float64            `json:"global_average_rating"`
	StatusDistribution  StatusDistribution `json:"status_distribution"`
	TopAnswer           *model.Answer      `json:"top_answer,omitempty"`
}

// Service 统计服务
type Service struct {
	answers AnswerStats
	tenants TenantStats
}

// NewService 创建统计服务
func NewService(answers AnswerStats, tenants TenantStats) *Service {
	return &Service{answers: answers, tenants: tenants}
}

// TenantDashboard 汇总租户的反馈量、全局均分、状态分布和最优答案
func (s *Service) TenantDashboard(tenantID string) (*Dashboard, error) {
	counts, err := s.answers.CountByStatus(tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count answers by status: %w", err)
	}

	stats, err := s.tenants.GetStats(tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant stats: %w", err)
	}

	top, err := s.answers.TopCanonical(tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load top answer: %w", err)
	}

	dashboard := &Dashboard{
		TenantID:            tenantID,
		GlobalAverageRating: model.DefaultBaseline,
		StatusDistribution: StatusDistribution{
			Candidate:  counts[model.AnswerStatusCandidate],
			Canonical:  counts[model.AnswerStatusCanonical],
			Quarantine: counts[model.AnswerStatusQuarantine],
		},
		TopAnswer: top,
	}
	if stats != nil {
		dashboard.TotalReviews = stats.RatingCount
		dashboard.GlobalAverageRating = stats.Average()
	}
	return dashboard, nil
}

// ListAnswers 按租户列出答案，status 为空时不过滤
func (s *Service) ListAnswers(tenantID, status string, offset, limit int) ([]*model.Answer, int64, error) {
	return s.answers.ListByTenant(tenantID, status, offset, limit)
}

// GetAnswer 获取单个答案
func (s *Service) GetAnswer(id string) (*model.Answer, error) {
	return s.answers.GetByID(id)
}

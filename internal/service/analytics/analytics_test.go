// Package analytics 统计服务单元测试
package analytics

import (
	"testing"

	"github.com/ashwinyue/recall/internal/model"
)

type mockAnswerStats struct {
	counts map[string]int64
	top    *model.Answer
}

func (m *mockAnswerStats) CountByStatus(tenantID string) (map[string]int64, error) {
	return m.counts, nil
}

func (m *mockAnswerStats) TopCanonical(tenantID string) (*model.Answer, error) {
	return m.top, nil
}

func (m *mockAnswerStats) ListByTenant(tenantID, status string, offset, limit int) ([]*model.Answer, int64, error) {
	return nil, 0, nil
}

func (m *mockAnswerStats) GetByID(id string) (*model.Answer, error) {
	return nil, nil
}

type mockTenantStats struct {
	stats *model.TenantStats
}

func (m *mockTenantStats) GetStats(tenantID string) (*model.TenantStats, error) {
	return m.stats, nil
}

// ========== TenantDashboard 测试 ==========

func TestTenantDashboard(t *testing.T) {
	top := &model.Answer{ID: "a1", Status: model.AnswerStatusCanonical, TrustScore: 4.6}
	s := NewService(
		&mockAnswerStats{
			counts: map[string]int64{
				model.AnswerStatusCandidate:  7,
				model.AnswerStatusCanonical:  3,
				model.AnswerStatusQuarantine: 1,
			},
			top: top,
		},
		&mockTenantStats{stats: &model.TenantStats{TenantID: "t1", RatingSum: 42, RatingCount: 10}},
	)

	dashboard, err := s.TenantDashboard("t1")
	if err != nil {
		t.Fatalf("TenantDashboard() unexpected error: %v", err)
	}

	if dashboard.TotalReviews != 10 {
		t.Errorf("TotalReviews = %d, want 10", dashboard.TotalReviews)
	}
	if dashboard.GlobalAverageRating != 4.2 {
		t.Errorf("GlobalAverageRating = %v, want 4.2", dashboard.GlobalAverageRating)
	}
	if dashboard.StatusDistribution.Candidate != 7 ||
		dashboard.StatusDistribution.Canonical != 3 ||
		dashboard.StatusDistribution.Quarantine != 1 {
		t.Errorf("StatusDistribution = %+v, want 7/3/1", dashboard.StatusDistribution)
	}
	if dashboard.TopAnswer == nil || dashboard.TopAnswer.ID != "a1" {
		t.Errorf("TopAnswer = %+v, want a1", dashboard.TopAnswer)
	}
}

func TestTenantDashboard_NoRatings(t *testing.T) {
	// 无评分数据时均分回落到默认基线
	s := NewService(&mockAnswerStats{counts: map[string]int64{}}, &mockTenantStats{stats: nil})

	dashboard, err := s.TenantDashboard("t1")
	if err != nil {
		t.Fatalf("TenantDashboard() unexpected error: %v", err)
	}
	if dashboard.GlobalAverageRating != model.DefaultBaseline {
		t.Errorf("GlobalAverageRating = %v, want default baseline %v", dashboard.GlobalAverageRating, model.DefaultBaseline)
	}
	if dashboard.TotalReviews != 0 {
		t.Errorf("TotalReviews = %d, want 0", dashboard.TotalReviews)
	}
	if dashboard.TopAnswer != nil {
		t.Errorf("TopAnswer = %+v, want nil", dashboard.TopAnswer)
	}
}

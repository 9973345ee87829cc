package repository

import (
	"errors"

	"github.com/ashwinyue/recall/internal/model"
	"gorm.io/gorm"
)

// AnswerRepository 答案数据访问
type AnswerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository 创建答案仓库
func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// Create 创建答案
func (r *AnswerRepository) Create(answer *model.Answer) error {
	return r.db.Create(answer).Error
}

// GetByID 获取答案，不存在时返回 (nil, nil)
func (r *AnswerRepository) GetByID(id string) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.Where("id = ?", id).First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// GetByIDs 批量获取答案
func (r *AnswerRepository) GetByIDs(ids []string) ([]*model.Answer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var answers []*model.Answer
	err := r.db.Where("id IN ?", ids).Find(&answers).Error
	return answers, err
}

// UpdateStats 更新反馈驱动的统计字段和状态
func (r *AnswerRepository) UpdateStats(id string, reuseCount int, ratingSum, trustScore float64, status string) error {
	return r.db.Model(&model.Answer{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reuse_count": reuseCount,
		"rating_sum":  ratingSum,
		"trust_score": trustScore,
		"status":      status,
	}).Error
}

// Delete 删除答案（仅评分引擎的 delete 裁决会走到这里）
func (r *AnswerRepository) Delete(id string) error {
	return r.db.Delete(&model.Answer{}, "id = ?", id).Error
}

// ListByTenant 按租户列出答案
func (r *AnswerRepository) ListByTenant(tenantID, status string, offset, limit int) ([]*model.Answer, int64, error) {
	var answers []*model.Answer
	var total int64

	query := r.db.Model(&model.Answer{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("trust_score DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&answers).Error
	return answers, total, err
}

// CountByStatus 按状态统计租户答案数
func (r *AnswerRepository) CountByStatus(tenantID string) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.Model(&model.Answer{}).
		Select("status, count(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// TopCanonical 返回租户信任分最高的 canonical 答案，没有时返回 (nil, nil)
func (r *AnswerRepository) TopCanonical(tenantID string) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.Where("tenant_id = ? AND status = ?", tenantID, model.AnswerStatusCanonical).
		Order("trust_score DESC").
		First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

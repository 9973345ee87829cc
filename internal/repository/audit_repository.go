package repository

import (
	"github.com/ashwinyue/recall/internal/model"
	"gorm.io/gorm"
)

// AuditRepository 反馈审计数据访问（只追加）
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计仓库
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create 追加审计记录
func (r *AuditRepository) Create(audit *model.FeedbackAudit) error {
	return r.db.Create(audit).Error
}

// ListByInteraction 列出某次交互的审计记录
func (r *AuditRepository) ListByInteraction(interactionID string) ([]*model.FeedbackAudit, error) {
	var audits []*model.FeedbackAudit
	err := r.db.Where("interaction_id = ?", interactionID).
		Order("created_at ASC").
		Find(&audits).Error
	return audits, err
}

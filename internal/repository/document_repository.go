package repository

import (
	"errors"

	"github.com/ashwinyue/recall/internal/model"
	"gorm.io/gorm"
)

// DocumentRepository 文档与分块数据访问
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建文档仓库
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create 创建文档
func (r *DocumentRepository) Create(doc *model.Document) error {
	return r.db.Create(doc).Error
}

// GetByID 获取文档，不存在时返回 (nil, nil)
func (r *DocumentRepository) GetByID(id string) (*model.Document, error) {
	var doc model.Document
	err := r.db.Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update 更新文档
func (r *DocumentRepository) Update(doc *model.Document) error {
	return r.db.Save(doc).Error
}

// ListByTenant 按租户列出文档
func (r *DocumentRepository) ListByTenant(tenantID string, offset, limit int) ([]*model.Document, int64, error) {
	var docs []*model.Document
	var total int64

	query := r.db.Model(&model.Document{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&docs).Error
	return docs, total, err
}

// CreateChunks 批量写入分块
func (r *DocumentRepository) CreateChunks(chunks []*model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.CreateInBatches(chunks, 100).Error
}

// DeleteChunksByDocument 删除文档的全部分块
func (r *DocumentRepository) DeleteChunksByDocument(documentID string) error {
	return r.db.Delete(&model.DocumentChunk{}, "document_id = ?", documentID).Error
}

// GetChunksByIDs 批量获取分块
func (r *DocumentRepository) GetChunksByIDs(ids []string) ([]*model.DocumentChunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var chunks []*model.DocumentChunk
	err := r.db.Where("id IN ?", ids).Find(&chunks).Error
	return chunks, err
}

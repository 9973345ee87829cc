package model

import "time"

// Document 上传的原始文档
type Document struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	TenantID   string          `gorm:"index;size:36;not null" json:"tenant_id"`
	Title      string          `gorm:"size:255" json:"title"`
	FileName   string          `gorm:"size:255" json:"file_name"`
	FilePath   string          `gorm:"size:500" json:"-"`
	FileSize   int64           `gorm:"default:0" json:"file_size"`
	Status     string          `gorm:"size:20;index;default:pending" json:"status"`
	ChunkCount int             `gorm:"default:0" json:"chunk_count"`
	ErrorMsg   string          `gorm:"type:text" json:"error_msg,omitempty"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Chunks     []DocumentChunk `gorm:"foreignKey:DocumentID" json:"-"`
}

// TableName 指定表名
func (Document) TableName() string {
	return "documents"
}

// 文档处理状态常量
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

// DocumentChunk 文档分块
// 向量存储在 ES chunks 索引中，以行ID为键
type DocumentChunk struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	DocumentID string    `gorm:"index;size:36;not null" json:"document_id"`
	TenantID   string    `gorm:"index;size:36;not null" json:"tenant_id"`
	ChunkIndex int       `gorm:"index" json:"chunk_index"`
	Content    string    `gorm:"type:text" json:"content"`
	TokenCount int       `gorm:"default:0" json:"token_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (DocumentChunk) TableName() string {
	return "document_chunks"
}

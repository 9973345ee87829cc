package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant 租户
type Tenant struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	APIKey      string    `gorm:"size:255;uniqueIndex" json:"api_key"`
	Status      string    `gorm:"size:50;default:'active'" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate GORM 钩子
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.APIKey == "" {
		t.APIKey = "tenant_" + t.ID
	}
	return nil
}

// TableName 指定表名
func (Tenant) TableName() string {
	return "tenants"
}

// DefaultBaseline 无评分数据时的租户基线分
const DefaultBaseline = 3.5

// TenantStats 租户级评分统计，作为贝叶斯先验
// 计数器只增不减，每次反馈事件原子更新一行
type TenantStats struct {
	TenantID    string    `gorm:"primaryKey;size:36" json:"tenant_id"`
	RatingSum   float64   `gorm:"default:0" json:"rating_sum"`
	RatingCount int64     `gorm:"default:0" json:"rating_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (TenantStats) TableName() string {
	return "tenant_stats"
}

// Average 计算租户平均分，无数据时返回默认基线
func (s *TenantStats) Average() float64 {
	if s == nil || s.RatingCount == 0 {
		return DefaultBaseline
	}
	return s.RatingSum / float64(s.RatingCount)
}

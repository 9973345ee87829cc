package repository

import (
	"errors"
	"fmt"

	"github.com/ashwinyue/recall/internal/model"
	"gorm.io/gorm"
)

// TenantRepository 租户与租户统计数据访问
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository 创建租户仓库
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create 创建租户
func (r *TenantRepository) Create(tenant *model.Tenant) error {
	return r.db.Create(tenant).Error
}

// GetByID 获取租户
func (r *TenantRepository) GetByID(id string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.db.Where("id = ?", id).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetStats 获取租户统计，没有评分数据时返回 (nil, nil)
func (r *TenantRepository) GetStats(tenantID string) (*model.TenantStats, error) {
	var stats model.TenantStats
	err := r.db.Where("tenant_id = ?", tenantID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// FoldRating 将一次评分原子折入租户基线并返回新的平均分
// 单条 upsert + RETURNING，避免跨网络的读-改-写竞态
func (r *TenantRepository) FoldRating(tenantID string, rating int) (float64, error) {
	row := r.db.Raw(`
		INSERT INTO tenant_stats (tenant_id, rating_sum, rating_count, created_at, updated_at)
		VALUES (?, ?, 1, NOW(), NOW())
		ON CONFLICT (tenant_id) DO UPDATE
		SET rating_sum   = tenant_stats.rating_sum + EXCLUDED.rating_sum,
		    rating_count = tenant_stats.rating_count + 1,
		    updated_at   = NOW()
		RETURNING rating_sum, rating_count`,
		tenantID, float64(rating)).Row()

	var sum float64
	var count int64
	if err := row.Scan(&sum, &count); err != nil {
		return 0, fmt.Errorf("failed to fold rating into tenant baseline: %w", err)
	}
	if count == 0 {
		return model.DefaultBaseline, nil
	}
	return sum / float64(count), nil
}

package repository

import (
	"errors"

	"github.com/ashwinyue/recall/internal/model"
	"gorm.io/gorm"
)

// InteractionRepository 交互记录数据访问
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository 创建交互仓库
func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Create 创建交互记录
func (r *InteractionRepository) Create(interaction *model.Interaction) error {
	return r.db.Create(interaction).Error
}

// GetByID 获取交互记录，不存在时返回 (nil, nil)
func (r *InteractionRepository) GetByID(id string) (*model.Interaction, error) {
	var interaction model.Interaction
	err := r.db.Where("id = ?", id).First(&interaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

// LatestByUser 获取用户最近一次交互，没有时返回 (nil, nil)
func (r *InteractionRepository) LatestByUser(userID string) (*model.Interaction, error) {
	var interaction model.Interaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&interaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

// SetRating 将评分从 null 置位，返回是否真正写入
// 条件更新保证评分只能设置一次
func (r *InteractionRepository) SetRating(id string, rating int) (bool, error) {
	result := r.db.Model(&model.Interaction{}).
		Where("id = ? AND rating IS NULL", id).
		Update("rating", rating)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AppendAnswerIDs 追加关联答案ID（去重）
func (r *InteractionRepository) AppendAnswerIDs(id string, answerIDs []string) error {
	if len(answerIDs) == 0 {
		return nil
	}

	var interaction model.Interaction
	if err := r.db.Where("id = ?", id).First(&interaction).Error; err != nil {
		return err
	}

	existing := interaction.GetAnswerIDs()
	seen := make(map[string]struct{}, len(existing))
	for _, aid := range existing {
		seen[aid] = struct{}{}
	}
	merged := existing
	for _, aid := range answerIDs {
		if _, ok := seen[aid]; ok {
			continue
		}
		seen[aid] = struct{}{}
		merged = append(merged, aid)
	}

	if err := interaction.SetAnswerIDs(merged); err != nil {
		return err
	}
	return r.db.Model(&model.Interaction{}).Where("id = ?", id).
		Update("answer_ids", interaction.AnswerIDs).Error
}

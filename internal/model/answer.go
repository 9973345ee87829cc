package model

import (
	"encoding/json"
	"time"
)

// Answer 缓存的AI答案（语义记忆条目）
type Answer struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	CanonicalPrompt string    `gorm:"type:text;not null" json:"canonical_prompt"` // 标准问题
	Response        string    `gorm:"type:text;not null" json:"response"`         // 答案文本
	Aliases         string    `gorm:"type:text" json:"-"`                         // 同义问法（JSON数组）
	Topics          string    `gorm:"type:text" json:"-"`                         // 主题标签（JSON数组）
	SourceDocIDs    string    `gorm:"type:text" json:"-"`                         // 来源文档块ID（JSON数组）
	TenantID        string    `gorm:"index;size:36;not null" json:"tenant_id"`
	Model           string    `gorm:"size:100" json:"model"`                          // 生成模型标识
	Status          string    `gorm:"size:20;index;default:candidate" json:"status"`  // candidate, canonical, quarantine
	ReuseCount      int       `gorm:"default:0" json:"reuse_count"`                   // 被复用/评分次数
	RatingSum       float64   `gorm:"default:0" json:"rating_sum"`                    // 累计评分
	TrustScore      float64   `gorm:"default:0" json:"trust_score"`                   // 贝叶斯信任分
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Answer) TableName() string {
	return "answers"
}

// 答案状态常量
// 状态只在创建时为 candidate，之后一律由评分引擎推导
const (
	AnswerStatusCandidate  = "candidate"  // 证据不足
	AnswerStatusCanonical  = "canonical"  // 已验证可复用
	AnswerStatusQuarantine = "quarantine" // 已验证错误，检索时用作反例
)

// MeanRating 计算平均评分
func (a *Answer) MeanRating() float64 {
	if a.ReuseCount == 0 {
		return 0
	}
	return a.RatingSum / float64(a.ReuseCount)
}

// GetAliases 获取同义问法列表
func (a *Answer) GetAliases() []string {
	return decodeStringList(a.Aliases)
}

// SetAliases 设置同义问法列表
func (a *Answer) SetAliases(aliases []string) error {
	s, err := encodeStringList(aliases)
	if err != nil {
		return err
	}
	a.Aliases = s
	return nil
}

// GetTopics 获取主题标签列表
func (a *Answer) GetTopics() []string {
	return decodeStringList(a.Topics)
}

// SetTopics 设置主题标签列表
func (a *Answer) SetTopics(topics []string) error {
	s, err := encodeStringList(topics)
	if err != nil {
		return err
	}
	a.Topics = s
	return nil
}

// GetSourceDocIDs 获取来源文档块ID列表
func (a *Answer) GetSourceDocIDs() []string {
	return decodeStringList(a.SourceDocIDs)
}

// SetSourceDocIDs 设置来源文档块ID列表
func (a *Answer) SetSourceDocIDs(ids []string) error {
	s, err := encodeStringList(ids)
	if err != nil {
		return err
	}
	a.SourceDocIDs = s
	return nil
}

func decodeStringList(s string) []string {
	if s == "" {
		return nil
	}
	var values []string
	_ = json.Unmarshal([]byte(s), &values)
	return values
}

func encodeStringList(values []string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

package model

import "time"

// Interaction 用户提交的一次提问
// Rating 在反馈到达前为 null，且只允许从 null 置位一次
type Interaction struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	PromptText string    `gorm:"type:text;not null" json:"prompt_text"` // 原始提问文本（不存压缩版）
	TenantID   string    `gorm:"index;size:36;not null" json:"tenant_id"`
	UserID     string    `gorm:"index;size:36;not null" json:"user_id"`
	Rating     *int      `gorm:"index" json:"rating"`
	AnswerIDs  string    `gorm:"type:text" json:"-"` // 关联答案ID（JSON数组）
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (Interaction) TableName() string {
	return "interactions"
}

// GetAnswerIDs 获取关联答案ID列表
func (i *Interaction) GetAnswerIDs() []string {
	return decodeStringList(i.AnswerIDs)
}

// SetAnswerIDs 设置关联答案ID列表
func (i *Interaction) SetAnswerIDs(ids []string) error {
	s, err := encodeStringList(ids)
	if err != nil {
		return err
	}
	i.AnswerIDs = s
	return nil
}

// HasRating 返回是否已收到反馈
func (i *Interaction) HasRating() bool {
	return i.Rating != nil
}

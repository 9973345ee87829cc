package model

import "time"

// FeedbackAudit 反馈审计记录（只追加，不修改）
type FeedbackAudit struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	UserID        string    `gorm:"index;size:36;not null" json:"user_id"`
	InteractionID string    `gorm:"index;size:36;not null" json:"interaction_id"`
	Rating        int       `gorm:"not null" json:"rating"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (FeedbackAudit) TableName() string {
	return "feedback_audits"
}

package repository

import "gorm.io/gorm"

// Repositories 仓库集合，用于统一管理所有仓库
type Repositories struct {
	DB          *gorm.DB // 直接访问数据库
	Answer      *AnswerRepository
	Interaction *InteractionRepository
	Tenant      *TenantRepository
	Audit       *AuditRepository
	Document    *DocumentRepository
	Auth        *AuthRepository
}

// NewRepositories 创建所有仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:          db,
		Answer:      NewAnswerRepository(db),
		Interaction: NewInteractionRepository(db),
		Tenant:      NewTenantRepository(db),
		Audit:       NewAuditRepository(db),
		Document:    NewDocumentRepository(db),
		Auth:        NewAuthRepository(db),
	}
}

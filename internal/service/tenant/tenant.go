// Package tenant 提供租户管理服务
package tenant

import (
	"errors"
	"fmt"

	"github.com/ashwinyue/recall/internal/model"
	"github.com/ashwinyue/recall/internal/repository"
)

// Service 租户服务
type Service struct {
	repo *repository.Repositories
}

// NewService 创建租户服务
func NewService(repo *repository.Repositories) *Service {
	return &Service{repo: repo}
}

// CreateRequest 创建租户请求
type CreateRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description"`
}

// Create 创建租户
func (s *Service) Create(req *CreateRequest) (*model.Tenant, error) {
	if req.Name == "" {
		return nil, errors.New("tenant name is required")
	}

	tenant := &model.Tenant{
		Name:        req.Name,
		Description: req.Description,
		Status:      "active",
	}
	if err := s.repo.Tenant.Create(tenant); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	return tenant, nil
}

// Get 获取租户
func (s *Service) Get(id string) (*model.Tenant, error) {
	return s.repo.Tenant.GetByID(id)
}

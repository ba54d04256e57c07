package repository

import (
	"context"

	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
)

// BuildingRepository 建筑数据访问接口
type BuildingRepository interface {
	List(ctx context.Context) ([]model.Building, error)
	// FirstOrCreate 按名称查找建筑，不存在时以给定编码创建
	FirstOrCreate(ctx context.Context, name, code string) (*model.Building, error)
}

type buildingRepo struct {
	db *gorm.DB
}

// NewBuildingRepo 创建 BuildingRepository 实例
func NewBuildingRepo(db *gorm.DB) BuildingRepository {
	return &buildingRepo{db: db}
}

func (r *buildingRepo) List(ctx context.Context) ([]model.Building, error) {
	var buildings []model.Building
	err := r.db.WithContext(ctx).Order("id ASC").Find(&buildings).Error
	return buildings, err
}

func (r *buildingRepo) FirstOrCreate(ctx context.Context, name, code string) (*model.Building, error) {
	var b model.Building
	err := r.db.WithContext(ctx).
		Where(model.Building{Name: name}).
		Attrs(model.Building{Code: code}).
		FirstOrCreate(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

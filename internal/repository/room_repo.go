package repository

import (
	"context"

	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
)

// RoomRepository 教室数据访问接口
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Room, error)
	List(ctx context.Context, filter model.RoomFilter) ([]model.Room, error)
	// FirstOrCreate 按 (building_id, name) 查找教室，不存在时以楼层 0、容量 0 创建
	FirstOrCreate(ctx context.Context, buildingID int64, name string) (*model.Room, error)
}

type roomRepo struct {
	db *gorm.DB
}

// NewRoomRepo 创建 RoomRepository 实例
func NewRoomRepo(db *gorm.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) List(ctx context.Context, filter model.RoomFilter) ([]model.Room, error) {
	var rooms []model.Room
	db := r.db.WithContext(ctx)

	if filter.BuildingID != nil {
		db = db.Where("building_id = ?", *filter.BuildingID)
	}
	if filter.Floor != nil {
		db = db.Where("floor = ?", *filter.Floor)
	}
	if filter.MinCapacity != nil {
		db = db.Where("capacity >= ?", *filter.MinCapacity)
	}

	err := db.Order("id ASC").Find(&rooms).Error
	return rooms, err
}

func (r *roomRepo) FirstOrCreate(ctx context.Context, buildingID int64, name string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Where(model.Room{BuildingID: buildingID, Name: name}).
		FirstOrCreate(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

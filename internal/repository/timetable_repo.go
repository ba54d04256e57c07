package repository

import (
	"context"

	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
)

// TimetableRepository 教室周课表数据访问接口
type TimetableRepository interface {
	// ListByRoomAndWeekday 返回某教室某星期的非空单元格，按节次升序
	ListByRoomAndWeekday(ctx context.Context, roomID int64, weekday int) ([]model.RoomTimetable, error)
	// ListByRoom 返回某教室全部课表行，按 (weekday, period) 升序
	ListByRoom(ctx context.Context, roomID int64) ([]model.RoomTimetable, error)
	// ReplaceByRoom 在事务中全量替换教室课表：先删除旧数据，再批量插入新数据
	ReplaceByRoom(ctx context.Context, roomID int64, rows []model.RoomTimetable) error
}

type timetableRepo struct {
	db *gorm.DB
}

// NewTimetableRepo 创建 TimetableRepository 实例
func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

func (r *timetableRepo) ListByRoomAndWeekday(ctx context.Context, roomID int64, weekday int) ([]model.RoomTimetable, error) {
	var rows []model.RoomTimetable
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND weekday = ?", roomID, weekday).
		Where("TRIM(raw_text) <> ''").
		Order("period ASC").
		Find(&rows).Error
	return rows, err
}

func (r *timetableRepo) ListByRoom(ctx context.Context, roomID int64) ([]model.RoomTimetable, error) {
	var rows []model.RoomTimetable
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("weekday ASC, period ASC").
		Find(&rows).Error
	return rows, err
}

func (r *timetableRepo) ReplaceByRoom(ctx context.Context, roomID int64, rows []model.RoomTimetable) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&model.RoomTimetable{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

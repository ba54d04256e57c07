package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Building    BuildingRepository
	Room        RoomRepository
	Timetable   TimetableRepository
	Reservation ReservationRepository
	Locker      RoomDateLocker
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Building:    NewBuildingRepo(db),
		Room:        NewRoomRepo(db),
		Timetable:   NewTimetableRepo(db),
		Reservation: NewReservationRepo(db),
		Locker:      NewRoomDateLocker(db),
	}
}

// ── 事务与锁 ──

// RoomDateLocker 以 (教室, 日期) 为粒度串行化"检查-写入"过程
type RoomDateLocker interface {
	// WithRoomDateLock 开启事务并持有 (roomID, date) 锁执行 fn；
	// fn 收到的 Repository 绑定在该事务上，fn 返回错误时回滚
	WithRoomDateLock(ctx context.Context, roomID int64, date time.Time, fn func(tx *Repository) error) error
}

type pgRoomDateLocker struct {
	db *gorm.DB
}

// NewRoomDateLocker 基于 pg_advisory_xact_lock 的 RoomDateLocker，锁随事务结束释放
func NewRoomDateLocker(db *gorm.DB) RoomDateLocker {
	return &pgRoomDateLocker{db: db}
}

func (l *pgRoomDateLocker) WithRoomDateLock(ctx context.Context, roomID int64, date time.Time, fn func(tx *Repository) error) error {
	day := int32(time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", int32(roomID), day).Error; err != nil {
			return err
		}
		return fn(NewRepository(tx))
	})
}

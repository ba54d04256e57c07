package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"smart-campus/backend/internal/model"
	pkgerrors "smart-campus/backend/pkg/errors"
)

// PostgreSQL exclusion_violation
const pgExclusionViolation = "23P01"

// ReservationRepository 预约数据访问接口（只追加，不提供修改与删除）
type ReservationRepository interface {
	// ListByRoomAndDate 返回某教室某日的预约，按开始时间升序
	ListByRoomAndDate(ctx context.Context, roomID int64, date time.Time) ([]model.Reservation, error)
	// Create 插入预约；与已有预约重叠时返回 pkgerrors.ErrReservationOverlap
	Create(ctx context.Context, res *model.Reservation) error
}

type reservationRepo struct {
	db *gorm.DB
}

// NewReservationRepo 创建 ReservationRepository 实例
func NewReservationRepo(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) ListByRoomAndDate(ctx context.Context, roomID int64, date time.Time) ([]model.Reservation, error) {
	var list []model.Reservation
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND date = ?", roomID, date.Format("2006-01-02")).
		Order("start_time ASC").
		Find(&list).Error
	return list, err
}

func (r *reservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	err := r.db.WithContext(ctx).Create(res).Error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
		return pkgerrors.ErrReservationOverlap
	}
	return err
}

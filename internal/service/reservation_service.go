package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/model"
	"smart-campus/backend/internal/repository"
	"smart-campus/backend/internal/timeline"
	pkgerrors "smart-campus/backend/pkg/errors"
)

// ── 预约模块业务错误 ──

var (
	ErrRoomNotFound        = errors.New("教室不存在")
	ErrInvalidDate         = timeline.ErrInvalidDate
	ErrInvalidTime         = timeline.ErrInvalidTime
	ErrInvalidTimeRange    = errors.New("结束时间必须晚于开始时间")
	ErrOutsideWindow       = errors.New("预约时间必须位于运营时段内")
	ErrReservationConflict = errors.New("该时段已被其他预约占用")
)

// EventReservationCreated 预约成功后发布的事件 routing key
const EventReservationCreated = "reservation.created"

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// ReservationService 预约业务接口
type ReservationService interface {
	// Reserve 校验并创建预约；冲突时返回 *ConflictError
	Reserve(ctx context.Context, req *dto.ReserveRequest) (*dto.ReserveResponse, error)
	// ListByDate 列出教室某日的预约，date 为空时取今天
	ListByDate(ctx context.Context, roomID int64, date string) ([]dto.ReservationResponse, error)
}

type reservationService struct {
	repo      *repository.Repository
	cal       *Calendar
	publisher EventPublisher
	logger    *zap.Logger
}

// NewReservationService 创建 ReservationService 实例；publisher 为 nil 时不发布事件
func NewReservationService(repo *repository.Repository, cal *Calendar, publisher EventPublisher, logger *zap.Logger) ReservationService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &reservationService{repo: repo, cal: cal, publisher: publisher, logger: logger}
}

// ────────────────────── Reserve ──────────────────────

func (s *reservationService) Reserve(ctx context.Context, req *dto.ReserveRequest) (*dto.ReserveResponse, error) {
	// 1. 参数语义校验
	date, err := timeline.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	start, err := timeline.ParseTimeOfDay(req.Start)
	if err != nil {
		return nil, err
	}
	end, err := timeline.ParseTimeOfDay(req.End)
	if err != nil {
		return nil, err
	}
	proposed, err := timeline.NewInterval(start, end)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	if !s.cal.window.Covers(proposed) {
		return nil, ErrOutsideWindow
	}

	// 2. 教室存在性
	if _, err := s.repo.Room.GetByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询教室失败", zap.Int64("room_id", req.RoomID), zap.Error(err))
		return nil, err
	}

	// 3. 持 (教室, 日期) 锁执行"检查-写入"，课表也在锁内读取
	res := &model.Reservation{
		RoomID:    req.RoomID,
		Date:      date,
		StartTime: proposed.Start.String(),
		EndTime:   proposed.End.String(),
		UserName:  req.User,
	}
	err = s.repo.Locker.WithRoomDateLock(ctx, req.RoomID, date, func(tx *repository.Repository) error {
		if err := NewConflictChecker(NewOccupancy(tx)).Check(ctx, req.RoomID, date, proposed); err != nil {
			return err
		}
		return tx.Reservation.Create(ctx, res)
	})
	if err != nil {
		var conflict *ConflictError
		switch {
		case errors.As(err, &conflict):
			s.logger.Info("预约冲突",
				zap.Int64("room_id", req.RoomID),
				zap.String("date", req.Date),
				zap.String("kind", string(conflict.Kind)),
				zap.String("block", conflict.Block.Interval.String()),
			)
			return nil, err
		case errors.Is(err, pkgerrors.ErrReservationOverlap):
			return nil, ErrReservationConflict
		case errors.Is(err, ErrSourceUnavailable):
			s.logger.Error("预约检查时数据源不可用", zap.Int64("room_id", req.RoomID), zap.Error(err))
			return nil, err
		default:
			s.logger.Error("创建预约失败", zap.Int64("room_id", req.RoomID), zap.Error(err))
			return nil, err
		}
	}

	s.publishCreated(ctx, res)

	return &dto.ReserveResponse{
		Message: "reserved",
		RoomID:  res.RoomID,
		Date:    req.Date,
		Start:   res.StartTime,
		End:     res.EndTime,
	}, nil
}

// publishCreated 事务提交后发布事件，失败只记录日志
func (s *reservationService) publishCreated(ctx context.Context, res *model.Reservation) {
	event := dto.ReservationCreatedEvent{
		ReservationID: res.ID,
		RoomID:        res.RoomID,
		Date:          res.Date.Format(timeline.DateLayout),
		Start:         res.StartTime,
		End:           res.EndTime,
		User:          res.UserName,
		CreatedAt:     s.cal.now().Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, EventReservationCreated, event); err != nil {
		s.logger.Warn("发布预约事件失败", zap.Int64("reservation_id", res.ID), zap.Error(err))
	}
}

// ────────────────────── ListByDate ──────────────────────

func (s *reservationService) ListByDate(ctx context.Context, roomID int64, date string) ([]dto.ReservationResponse, error) {
	day, err := s.cal.resolveDate(date)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Room.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询教室失败", zap.Int64("room_id", roomID), zap.Error(err))
		return nil, err
	}

	list, err := s.repo.Reservation.ListByRoomAndDate(ctx, roomID, day)
	if err != nil {
		s.logger.Error("列出预约失败", zap.Int64("room_id", roomID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReservationResponse, 0, len(list))
	for _, r := range list {
		result = append(result, dto.ReservationResponse{
			ID:        r.ID,
			RoomID:    r.RoomID,
			Date:      day.Format(timeline.DateLayout),
			Start:     trimSeconds(r.StartTime),
			End:       trimSeconds(r.EndTime),
			User:      r.UserName,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

// trimSeconds 数据库 TIME 列读出为 "HH:MM:SS"，对外统一为 "HH:MM"
func trimSeconds(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

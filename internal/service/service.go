package service

import (
	"go.uber.org/zap"

	"smart-campus/backend/config"
	"smart-campus/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Room        RoomService
	Reservation ReservationService
	Export      ExportService
	Import      ImportService
}

// NewService 创建 Service 聚合
// publisher 为 nil 时不发布领域事件；clock 为 nil 时使用系统时间
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	publisher EventPublisher,
	clock Clock,
	logger *zap.Logger,
) (*Service, error) {
	cal, err := NewCalendar(&cfg.Timeline, clock)
	if err != nil {
		return nil, err
	}

	room := NewRoomService(repo, cal, logger)
	return &Service{
		Room:        room,
		Reservation: NewReservationService(repo, cal, publisher, logger),
		Export:      NewExportService(room, cal, logger),
		Import:      NewImportService(repo, logger),
	}, nil
}

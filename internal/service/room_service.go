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
)

// RoomService 建筑、教室与时间轴查询接口
type RoomService interface {
	ListBuildings(ctx context.Context) ([]dto.BuildingResponse, error)
	ListRooms(ctx context.Context, req *dto.RoomListRequest) ([]dto.RoomResponse, error)
	// FreeNow 列出当前时刻没有任何上课或预约块覆盖的教室
	FreeNow(ctx context.Context, req *dto.FreeNowRequest) (*dto.FreeNowResponse, error)
	// GetTimeline 计算教室单日时间轴，date 为空时取今天
	GetTimeline(ctx context.Context, roomID int64, date string) (*dto.TimelineResponse, error)
	GetRawTimetable(ctx context.Context, roomID int64) ([]dto.RawTimetableEntry, error)
}

type roomService struct {
	repo   *repository.Repository
	cal    *Calendar
	logger *zap.Logger
}

// NewRoomService 创建 RoomService 实例
func NewRoomService(repo *repository.Repository, cal *Calendar, logger *zap.Logger) RoomService {
	return &roomService{repo: repo, cal: cal, logger: logger}
}

// ────────────────────── ListBuildings ──────────────────────

func (s *roomService) ListBuildings(ctx context.Context) ([]dto.BuildingResponse, error) {
	buildings, err := s.repo.Building.List(ctx)
	if err != nil {
		s.logger.Error("列出建筑失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.BuildingResponse, 0, len(buildings))
	for _, b := range buildings {
		result = append(result, dto.BuildingResponse{ID: b.ID, Code: b.Code, Name: b.Name})
	}
	return result, nil
}

// ────────────────────── ListRooms ──────────────────────

func (s *roomService) ListRooms(ctx context.Context, req *dto.RoomListRequest) ([]dto.RoomResponse, error) {
	rooms, err := s.repo.Room.List(ctx, model.RoomFilter{
		BuildingID:  req.BuildingID,
		Floor:       req.Floor,
		MinCapacity: req.MinCapacity,
	})
	if err != nil {
		s.logger.Error("列出教室失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		result = append(result, toRoomResponse(&rooms[i]))
	}
	return result, nil
}

// ────────────────────── FreeNow ──────────────────────

func (s *roomService) FreeNow(ctx context.Context, req *dto.FreeNowRequest) (*dto.FreeNowResponse, error) {
	now := s.cal.now()
	today := s.cal.today()
	minute := timeline.FromTime(now)

	rooms, err := s.repo.Room.List(ctx, model.RoomFilter{
		BuildingID:  req.BuildingID,
		MinCapacity: req.MinCapacity,
	})
	if err != nil {
		s.logger.Error("列出教室失败", zap.Error(err))
		return nil, err
	}

	occ := NewOccupancy(s.repo)
	free := make([]dto.RoomResponse, 0, len(rooms))
	for i := range rooms {
		classes, reservations, err := occ.Blocks(ctx, rooms[i].ID, today)
		if err != nil {
			// 单个教室失败不影响整体列表，但不能当作空闲
			s.logger.Warn("读取教室占用失败，已从空闲列表排除",
				zap.Int64("room_id", rooms[i].ID), zap.Error(err))
			continue
		}
		if busyAt(classes, minute) || busyAt(reservations, minute) {
			continue
		}
		free = append(free, toRoomResponse(&rooms[i]))
	}

	return &dto.FreeNowResponse{
		Timestamp: now.Format(time.RFC3339),
		Count:     len(free),
		FreeRooms: free,
	}, nil
}

func busyAt(blocks []timeline.Block, t timeline.TimeOfDay) bool {
	for _, b := range blocks {
		if b.Contains(t) {
			return true
		}
	}
	return false
}

// ────────────────────── GetTimeline ──────────────────────

func (s *roomService) GetTimeline(ctx context.Context, roomID int64, date string) (*dto.TimelineResponse, error) {
	day, err := s.cal.resolveDate(date)
	if err != nil {
		return nil, err
	}
	if err := s.ensureRoom(ctx, roomID); err != nil {
		return nil, err
	}

	classes, reservations, err := NewOccupancy(s.repo).Blocks(ctx, roomID, day)
	if err != nil {
		s.logger.Error("计算时间轴失败", zap.Int64("room_id", roomID), zap.Error(err))
		return nil, err
	}

	all := make([]timeline.Block, 0, len(classes)+len(reservations))
	all = append(all, classes...)
	all = append(all, reservations...)
	segments := timeline.Build(all, s.cal.window)

	resp := &dto.TimelineResponse{
		RoomID:       roomID,
		Date:         day.Format(timeline.DateLayout),
		Blocks:       make([]dto.TimelineBlock, 0, len(segments)),
		Classes:      make([]dto.ClassBlockResponse, 0, len(classes)),
		Reservations: make([]dto.ReservationBlockResponse, 0, len(reservations)),
	}
	for _, seg := range segments {
		resp.Blocks = append(resp.Blocks, dto.TimelineBlock{
			Start:  seg.Start.String(),
			End:    seg.End.String(),
			Status: string(seg.Status),
			Label:  seg.Label(),
		})
	}
	for _, b := range classes {
		resp.Classes = append(resp.Classes, dto.ClassBlockResponse{Start: b.Start.String(), End: b.End.String(), Label: b.Label})
	}
	for _, b := range reservations {
		resp.Reservations = append(resp.Reservations, dto.ReservationBlockResponse{Start: b.Start.String(), End: b.End.String(), User: b.Label})
	}
	return resp, nil
}

// ────────────────────── GetRawTimetable ──────────────────────

func (s *roomService) GetRawTimetable(ctx context.Context, roomID int64) ([]dto.RawTimetableEntry, error) {
	if err := s.ensureRoom(ctx, roomID); err != nil {
		return nil, err
	}

	rows, err := s.repo.Timetable.ListByRoom(ctx, roomID)
	if err != nil {
		s.logger.Error("读取原始课表失败", zap.Int64("room_id", roomID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RawTimetableEntry, 0, len(rows))
	for _, r := range rows {
		result = append(result, dto.RawTimetableEntry{Period: r.Period, Weekday: r.Weekday, RawText: r.RawText})
	}
	return result, nil
}

// ── 内部工具 ──

func (s *roomService) ensureRoom(ctx context.Context, roomID int64) error {
	if _, err := s.repo.Room.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		s.logger.Error("查询教室失败", zap.Int64("room_id", roomID), zap.Error(err))
		return err
	}
	return nil
}

func toRoomResponse(r *model.Room) dto.RoomResponse {
	return dto.RoomResponse{
		ID:         r.ID,
		BuildingID: r.BuildingID,
		Name:       r.Name,
		Floor:      r.Floor,
		Capacity:   r.Capacity,
	}
}

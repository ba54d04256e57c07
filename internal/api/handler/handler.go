package handler

import "smart-campus/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Health      *HealthHandler
	Room        *RoomHandler
	Reservation *ReservationHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, ping PingFunc) *Handler {
	return &Handler{
		Health:      NewHealthHandler(ping),
		Room:        NewRoomHandler(svc.Room),
		Reservation: NewReservationHandler(svc.Reservation),
		Export:      NewExportHandler(svc.Export),
	}
}

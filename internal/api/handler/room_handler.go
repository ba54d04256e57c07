package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/service"
	"smart-campus/backend/pkg/response"
)

// RoomHandler 建筑 / 教室 / 时间轴 HTTP 处理器
type RoomHandler struct {
	roomSvc service.RoomService
}

// NewRoomHandler 创建 RoomHandler
func NewRoomHandler(roomSvc service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// ListBuildings 建筑列表
// GET /api/v1/buildings
func (h *RoomHandler) ListBuildings(c *gin.Context) {
	buildings, err := h.roomSvc.ListBuildings(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, buildings)
}

// ListRooms 教室列表
// GET /api/v1/rooms?building_id=&floor=&min_capacity=
func (h *RoomHandler) ListRooms(c *gin.Context) {
	var req dto.RoomListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rooms, err := h.roomSvc.ListRooms(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, rooms)
}

// FreeNow 当前空闲教室
// GET /api/v1/rooms/free-now?building_id=&min_capacity=
func (h *RoomHandler) FreeNow(c *gin.Context) {
	var req dto.FreeNowRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.roomSvc.FreeNow(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// GetTimeline 教室单日时间轴
// GET /api/v1/rooms/:id/timeline?date=YYYY-MM-DD
func (h *RoomHandler) GetTimeline(c *gin.Context) {
	roomID, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}
	var q dto.DateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 16001, "日期格式无效，应为 YYYY-MM-DD")
		return
	}

	tl, err := h.roomSvc.GetTimeline(c.Request.Context(), roomID, q.Date)
	if err != nil {
		handleTimelineError(c, err)
		return
	}
	response.OK(c, tl)
}

// GetRawTimetable 教室原始周课表
// GET /api/v1/rooms/:id/raw-timetable
func (h *RoomHandler) GetRawTimetable(c *gin.Context) {
	roomID, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	rows, err := h.roomSvc.GetRawTimetable(c.Request.Context(), roomID)
	if err != nil {
		handleTimelineError(c, err)
		return
	}
	response.OK(c, rows)
}

// handleTimelineError 时间轴类查询的错误映射，导出接口共用
func handleTimelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 16001, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 16004, "教室不存在")
	case errors.Is(err, service.ErrSourceUnavailable):
		response.ServiceUnavailable(c, 16005, "占用数据源暂不可用，请稍后重试")
	default:
		response.InternalError(c)
	}
}

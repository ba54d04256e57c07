package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/service"
	"smart-campus/backend/pkg/response"
)

// ReservationHandler 预约模块 HTTP 处理器
type ReservationHandler struct {
	reservationSvc service.ReservationService
}

// NewReservationHandler 创建 ReservationHandler
func NewReservationHandler(reservationSvc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc}
}

// Reserve 创建预约
// POST /api/v1/rooms/reserve
func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	result, err := h.reservationSvc.Reserve(c.Request.Context(), &req)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}
	response.Created(c, result)
}

// ListReservations 教室某日预约列表
// GET /api/v1/rooms/:id/reservations?date=YYYY-MM-DD
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	roomID, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}
	var q dto.DateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 16001, "日期格式无效，应为 YYYY-MM-DD")
		return
	}

	list, err := h.reservationSvc.ListByDate(c.Request.Context(), roomID, q.Date)
	if err != nil {
		h.handleReservationError(c, err)
		return
	}
	response.OK(c, list)
}

func (h *ReservationHandler) handleReservationError(c *gin.Context, err error) {
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &conflict):
		respondConflict(c, conflict)
	case errors.Is(err, service.ErrReservationConflict):
		response.Conflict(c, 16007, "该时段已被其他预约占用",
			dto.ConflictResponse{Error: string(service.ConflictWithReservation)})
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 16001, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidTime), errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 16002, "时间无效：格式应为 HH:MM 且结束时间晚于开始时间")
	case errors.Is(err, service.ErrOutsideWindow):
		response.BadRequest(c, 16003, "预约时间必须位于运营时段内")
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 16004, "教室不存在")
	case errors.Is(err, service.ErrSourceUnavailable):
		response.ServiceUnavailable(c, 16005, "占用数据源暂不可用，请稍后重试")
	default:
		response.InternalError(c)
	}
}

// respondConflict 409：data 中携带阻塞的上课块或预约块
func respondConflict(c *gin.Context, conflict *service.ConflictError) {
	block := &dto.ConflictBlock{
		Start: conflict.Block.Start.String(),
		End:   conflict.Block.End.String(),
	}
	data := dto.ConflictResponse{Error: string(conflict.Kind)}

	if conflict.Kind == service.ConflictWithClass {
		block.Label = conflict.Block.Label
		data.ClassBlock = block
		response.Conflict(c, 16006, "与上课时间冲突", data)
		return
	}
	block.User = conflict.Block.Label
	data.ReservationBlock = block
	response.Conflict(c, 16007, "与已有预约冲突", data)
}

package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/service"
	"smart-campus/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTimeline 导出单日时间轴 Excel
// GET /api/v1/rooms/:id/timeline/export?date=YYYY-MM-DD
func (h *ExportHandler) ExportTimeline(c *gin.Context) {
	roomID, date, ok := bindRoomDate(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportTimelineXLSX(c.Request.Context(), roomID, date)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	setAttachment(c, filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportCalendar 导出单日上课与预约为 iCalendar
// GET /api/v1/rooms/:id/calendar.ics?date=YYYY-MM-DD
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	roomID, date, ok := bindRoomDate(c)
	if !ok {
		return
	}

	data, filename, err := h.exportSvc.ExportTimelineICS(c.Request.Context(), roomID, date)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	setAttachment(c, filename)
	c.Data(http.StatusOK, icsContentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrExportGenerateFail) {
		response.Error(c, http.StatusInternalServerError, 16101, "生成导出文件失败")
		return
	}
	handleTimelineError(c, err)
}

func bindRoomDate(c *gin.Context) (int64, string, bool) {
	roomID, ok := MustGetIDParam(c, "id")
	if !ok {
		return 0, "", false
	}
	var q dto.DateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 16001, "日期格式无效，应为 YYYY-MM-DD")
		return 0, "", false
	}
	return roomID, q.Date, true
}

// setAttachment 设置下载响应头
func setAttachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"smart-campus/backend/internal/timeline"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 时间轴导出接口
//
// 导出内容与 GetTimeline 相同，教室不存在、数据源不可用等错误原样返回。
// 文件内容以内存缓冲返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportTimelineXLSX 导出单日时间轴为 Excel
	ExportTimelineXLSX(ctx context.Context, roomID int64, date string) (*bytes.Buffer, string, error)
	// ExportTimelineICS 导出单日上课与预约块为 iCalendar
	ExportTimelineICS(ctx context.Context, roomID int64, date string) ([]byte, string, error)
}

type exportService struct {
	rooms  RoomService
	cal    *Calendar
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(rooms RoomService, cal *Calendar, logger *zap.Logger) ExportService {
	return &exportService{rooms: rooms, cal: cal, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportTimelineXLSX
// ═══════════════════════════════════════════════════════════
//
// Sheet "时间轴"：开始 | 结束 | 状态 | 说明，逐段列出 free / occupied
// Sheet "明细"  ：来源 | 开始 | 结束 | 课程/预约人

func (s *exportService) ExportTimelineXLSX(ctx context.Context, roomID int64, date string) (*bytes.Buffer, string, error) {
	tl, err := s.rooms.GetTimeline(ctx, roomID, date)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const mainSheet, detailSheet = "时间轴", "明细"
	idx, _ := f.NewSheet(mainSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	f.NewSheet(detailSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	occupiedStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F4CCCC"}, Pattern: 1},
	})

	// 标题行
	f.SetCellValue(mainSheet, "A1", fmt.Sprintf("教室 %d — %s", tl.RoomID, tl.Date))
	f.MergeCell(mainSheet, "A1", "D1")
	f.SetCellStyle(mainSheet, "A1", "D1", headerStyle)

	writeRow(f, mainSheet, 2, "开始", "结束", "状态", "说明")
	f.SetCellStyle(mainSheet, "A2", "D2", headerStyle)
	f.SetColWidth(mainSheet, "A", "C", 10)
	f.SetColWidth(mainSheet, "D", "D", 40)

	row := 3
	for _, b := range tl.Blocks {
		writeRow(f, mainSheet, row, b.Start, b.End, statusText(b.Status), b.Label)
		if b.Status == string(timeline.StatusOccupied) {
			f.SetCellStyle(mainSheet, cellName(1, row), cellName(4, row), occupiedStyle)
		}
		row++
	}

	writeRow(f, detailSheet, 1, "来源", "开始", "结束", "课程/预约人")
	f.SetCellStyle(detailSheet, "A1", "D1", headerStyle)
	f.SetColWidth(detailSheet, "D", "D", 40)
	row = 2
	for _, c := range tl.Classes {
		writeRow(f, detailSheet, row, "上课", c.Start, c.End, c.Label)
		row++
	}
	for _, r := range tl.Reservations {
		writeRow(f, detailSheet, row, "预约", r.Start, r.End, r.User)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("timeline_%d_%s.xlsx", tl.RoomID, tl.Date), nil
}

// ═══════════════════════════════════════════════════════════
// ExportTimelineICS
// ═══════════════════════════════════════════════════════════
//
// 每个上课块、预约块各对应一个 VEVENT；UID 由 (教室, 日期, 来源, 开始) 派生，
// 重复导出同一天得到相同 UID，日历客户端可以去重。

func (s *exportService) ExportTimelineICS(ctx context.Context, roomID int64, date string) ([]byte, string, error) {
	tl, err := s.rooms.GetTimeline(ctx, roomID, date)
	if err != nil {
		return nil, "", err
	}
	day, err := timeline.ParseDate(tl.Date)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//smart-campus//room-timeline//KO")
	cal.SetXWRCalName(fmt.Sprintf("room-%d %s", tl.RoomID, tl.Date))
	cal.SetXWRTimezone(s.cal.loc.String())

	stamp := s.cal.now()
	add := func(source timeline.Source, start, end, summary string) error {
		from, err := timeline.ParseTimeOfDay(start)
		if err != nil {
			return err
		}
		to, err := timeline.ParseTimeOfDay(end)
		if err != nil {
			return err
		}
		uid := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%d/%s/%s/%s", tl.RoomID, tl.Date, source, start)))

		ev := cal.AddEvent(uid.String() + "@smart-campus")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(s.cal.at(day, from))
		ev.SetEndAt(s.cal.at(day, to))
		ev.SetSummary(summary)
		ev.SetLocation(fmt.Sprintf("room %d", tl.RoomID))
		ev.SetProperty(ics.ComponentPropertyCategories, string(source))
		return nil
	}

	for _, c := range tl.Classes {
		if err := add(timeline.SourceClass, c.Start, c.End, c.Label); err != nil {
			s.logger.Error("生成日历事件失败", zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}
	for _, r := range tl.Reservations {
		if err := add(timeline.SourceReservation, r.Start, r.End, "预约: "+r.User); err != nil {
			s.logger.Error("生成日历事件失败", zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	return []byte(cal.Serialize()), fmt.Sprintf("room_%d_%s.ics", tl.RoomID, tl.Date), nil
}

// ── 辅助函数 ──

func statusText(status string) string {
	if status == string(timeline.StatusOccupied) {
		return "占用"
	}
	return "空闲"
}

func writeRow(f *excelize.File, sheet string, row int, values ...string) {
	for i, v := range values {
		f.SetCellValue(sheet, cellName(i+1, row), v)
	}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

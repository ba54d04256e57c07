package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/model"
	"smart-campus/backend/internal/repository"
)

// ── 课表导入模块业务错误 ──

var (
	ErrImportFileName = errors.New(`课表文件名应为 "<建筑> - <教室>.csv"`)
	ErrImportFormat   = errors.New("课表 CSV 格式无效")
)

// 抓取结果的列布局：col_1 为节次，col_2 ~ col_7 依次为周一 ~ 周六
const (
	periodColumn  = "col_1"
	firstDayIndex = 2
	lastDayIndex  = 7
)

// ImportService 课表导入接口
type ImportService interface {
	// ImportRoomCSV 导入一个教室的课表文件：按文件名建立建筑与教室，
	// 并在事务中整体替换该教室的课表行
	ImportRoomCSV(ctx context.Context, filename string, r io.Reader) (*dto.ImportResult, error)
}

type importService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(repo *repository.Repository, logger *zap.Logger) ImportService {
	return &importService{repo: repo, logger: logger}
}

// ParseRoomFileName 从 "<建筑> - <教室>.csv" 中取出建筑名与教室名
func ParseRoomFileName(filename string) (building, room string, err error) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	building, room, ok := strings.Cut(base, " - ")
	building, room = strings.TrimSpace(building), strings.TrimSpace(room)
	if !ok || building == "" || room == "" {
		return "", "", fmt.Errorf("%w: %s", ErrImportFileName, filename)
	}
	return building, room, nil
}

// BuildingCode 由建筑名生成编码：去掉"관"字并转大写，如 "Prime관" → "PRIME"
func BuildingCode(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "관", ""))
}

// ────────────────────── ImportRoomCSV ──────────────────────

func (s *importService) ImportRoomCSV(ctx context.Context, filename string, r io.Reader) (*dto.ImportResult, error) {
	buildingName, roomName, err := ParseRoomFileName(filename)
	if err != nil {
		return nil, err
	}

	cells, err := parseTimetableCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImportFormat, filename, err)
	}

	building, err := s.repo.Building.FirstOrCreate(ctx, buildingName, BuildingCode(buildingName))
	if err != nil {
		s.logger.Error("创建建筑失败", zap.String("building", buildingName), zap.Error(err))
		return nil, err
	}
	room, err := s.repo.Room.FirstOrCreate(ctx, building.ID, roomName)
	if err != nil {
		s.logger.Error("创建教室失败", zap.String("room", roomName), zap.Error(err))
		return nil, err
	}

	rows := make([]model.RoomTimetable, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, model.RoomTimetable{RoomID: room.ID, Period: c.Period, Weekday: c.Weekday, RawText: c.RawText})
	}
	if err := s.repo.Timetable.ReplaceByRoom(ctx, room.ID, rows); err != nil {
		s.logger.Error("写入课表失败", zap.Int64("room_id", room.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("课表导入完成",
		zap.String("building", buildingName),
		zap.String("room", roomName),
		zap.Int("rows", len(rows)),
	)
	return &dto.ImportResult{Building: buildingName, Room: roomName, RoomID: room.ID, Rows: len(rows)}, nil
}

// timetableCell CSV 中一个非空课表格
type timetableCell struct {
	Period  int
	Weekday int
	RawText string
}

// parseTimetableCSV 读取带表头的课表 CSV。
// 节次为空或 "nan" 的行跳过，单元格为空或 "nan" 的格子跳过。
func parseTimetableCSV(r io.Reader) ([]timetableCell, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	periodIdx, ok := columns[periodColumn]
	if !ok {
		return nil, fmt.Errorf("缺少 %s 列", periodColumn)
	}

	var cells []timetableCell
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		rawPeriod := field(record, periodIdx)
		if isBlankCell(rawPeriod) {
			continue
		}
		period, err := parsePeriod(rawPeriod)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行节次 %q 无效", line, rawPeriod)
		}

		for col := firstDayIndex; col <= lastDayIndex; col++ {
			idx, ok := columns["col_"+strconv.Itoa(col)]
			if !ok {
				continue
			}
			text := field(record, idx)
			if isBlankCell(text) {
				continue
			}
			cells = append(cells, timetableCell{Period: period, Weekday: col - firstDayIndex + 1, RawText: text})
		}
	}
	return cells, nil
}

func field(record []string, idx int) string {
	if idx < len(record) {
		return record[idx]
	}
	return ""
}

func isBlankCell(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}

// parsePeriod 接受 "3" 与表格工具导出的 "3.0"
func parsePeriod(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid period %q", s)
	}
	return int(f), nil
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"smart-campus/backend/internal/dto"
	"smart-campus/backend/internal/service"
	"smart-campus/backend/internal/timeline"
	"smart-campus/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock RoomService ──

type mockRoomService struct {
	buildings    []dto.BuildingResponse
	rooms        []dto.RoomResponse
	freeNow      *dto.FreeNowResponse
	timeline     *dto.TimelineResponse
	raw          []dto.RawTimetableEntry
	err          error
	lastDate     string
	lastRoomID   int64
	lastRoomList *dto.RoomListRequest
}

func (m *mockRoomService) ListBuildings(_ context.Context) ([]dto.BuildingResponse, error) {
	return m.buildings, m.err
}
func (m *mockRoomService) ListRooms(_ context.Context, req *dto.RoomListRequest) ([]dto.RoomResponse, error) {
	m.lastRoomList = req
	return m.rooms, m.err
}
func (m *mockRoomService) FreeNow(_ context.Context, _ *dto.FreeNowRequest) (*dto.FreeNowResponse, error) {
	return m.freeNow, m.err
}
func (m *mockRoomService) GetTimeline(_ context.Context, roomID int64, date string) (*dto.TimelineResponse, error) {
	m.lastRoomID, m.lastDate = roomID, date
	return m.timeline, m.err
}
func (m *mockRoomService) GetRawTimetable(_ context.Context, roomID int64) ([]dto.RawTimetableEntry, error) {
	m.lastRoomID = roomID
	return m.raw, m.err
}

// ── Mock ReservationService ──

type mockReservationService struct {
	reserveResult *dto.ReserveResponse
	listResult    []dto.ReservationResponse
	err           error
	called        bool
}

func (m *mockReservationService) Reserve(_ context.Context, _ *dto.ReserveRequest) (*dto.ReserveResponse, error) {
	m.called = true
	return m.reserveResult, m.err
}
func (m *mockReservationService) ListByDate(_ context.Context, _ int64, _ string) ([]dto.ReservationResponse, error) {
	return m.listResult, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	data     []byte
	filename string
	err      error
}

func (m *mockExportService) ExportTimelineXLSX(_ context.Context, _ int64, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportTimelineICS(_ context.Context, _ int64, _ string) ([]byte, string, error) {
	return m.data, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// parseData 将响应 data 字段解析到 out
func parseData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("响应不是合法 JSON: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("解析 data 失败: %v", err)
	}
}

func validReserve() dto.ReserveRequest {
	return dto.ReserveRequest{RoomID: 1, Date: "2025-11-10", Start: "14:30", End: "15:30", User: "kim"}
}

func serveReserve(h *ReservationHandler, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/rooms/reserve", body)
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/rooms/reserve", h.Reserve)
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// ReservationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestReservationHandler_Reserve_Success(t *testing.T) {
	mock := &mockReservationService{reserveResult: &dto.ReserveResponse{
		Message: "reserved", RoomID: 1, Date: "2025-11-10", Start: "14:30", End: "15:30",
	}}
	w := serveReserve(NewReservationHandler(mock), jsonBody(validReserve()))

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
	var data dto.ReserveResponse
	parseData(t, w, &data)
	if data.Message != "reserved" || data.Start != "14:30" {
		t.Errorf("响应数据不符: %+v", data)
	}
}

func TestReservationHandler_Reserve_BindingErrors(t *testing.T) {
	tests := []struct {
		name string
		body io.Reader
	}{
		{"非法 JSON", bytes.NewReader([]byte("invalid json"))},
		{"缺少 user", jsonBody(map[string]interface{}{"room_id": 1, "date": "2025-11-10", "start": "10:00", "end": "11:00"})},
		{"时间格式", jsonBody(dto.ReserveRequest{RoomID: 1, Date: "2025-11-10", Start: "9:00", End: "10:00", User: "kim"})},
		{"时间带非法后缀", jsonBody(dto.ReserveRequest{RoomID: 1, Date: "2025-11-10", Start: "10:00:zz", End: "11:00:xx", User: "kim"})},
		{"时间带秒", jsonBody(dto.ReserveRequest{RoomID: 1, Date: "2025-11-10", Start: "10:00:00", End: "11:00", User: "kim"})},
		{"日期格式", jsonBody(dto.ReserveRequest{RoomID: 1, Date: "2025-11-31", Start: "09:00", End: "10:00", User: "kim"})},
		{"room_id 非正", jsonBody(dto.ReserveRequest{RoomID: 0, Date: "2025-11-10", Start: "09:00", End: "10:00", User: "kim"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockReservationService{}
			w := serveReserve(NewReservationHandler(mock), tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("期望 400，实际 %d", w.Code)
			}
			if resp := parseResponse(w); resp.Code != 10001 {
				t.Errorf("期望业务码 10001，实际 %d", resp.Code)
			}
			if mock.called {
				t.Error("参数校验失败时不应调用 Service")
			}
		})
	}
}

func TestReservationHandler_Reserve_ClassConflict(t *testing.T) {
	mock := &mockReservationService{err: &service.ConflictError{
		Kind: service.ConflictWithClass,
		Block: timeline.Block{
			Interval: timeline.Interval{Start: timeline.At(13, 0), End: timeline.At(14, 50)},
			Label:    "공업수학 (01분반)",
			Source:   timeline.SourceClass,
		},
	}}
	w := serveReserve(NewReservationHandler(mock), jsonBody(validReserve()))

	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际 %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 16006 {
		t.Errorf("期望业务码 16006，实际 %d", resp.Code)
	}
	var data dto.ConflictResponse
	parseData(t, w, &data)
	if data.Error != "conflict_with_class" || data.ClassBlock == nil || data.ReservationBlock != nil {
		t.Fatalf("冲突数据不符: %+v", data)
	}
	if data.ClassBlock.Start != "13:00" || data.ClassBlock.End != "14:50" || data.ClassBlock.Label != "공업수학 (01분반)" {
		t.Errorf("class_block 不符: %+v", data.ClassBlock)
	}
}

func TestReservationHandler_Reserve_ConflictEnvelopeLayout(t *testing.T) {
	mock := &mockReservationService{err: &service.ConflictError{
		Kind: service.ConflictWithReservation,
		Block: timeline.Block{
			Interval: timeline.Interval{Start: timeline.At(15, 0), End: timeline.At(16, 0)},
			Label:    "lee",
			Source:   timeline.SourceReservation,
		},
	}}
	w := serveReserve(NewReservationHandler(mock), jsonBody(validReserve()))

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	for _, key := range []string{"code", "message", "data"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("信封缺少顶层字段 %s: %s", key, w.Body.String())
		}
	}
	if _, ok := raw["error"]; ok {
		t.Errorf("冲突原因应位于 data.error 而非顶层: %s", w.Body.String())
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw["data"], &data); err != nil {
		t.Fatalf("解析 data 失败: %v", err)
	}
	if string(data["error"]) != `"conflict_with_reservation"` {
		t.Errorf("期望 data.error 为 conflict_with_reservation，实际 %s", data["error"])
	}
	if _, ok := data["reservation_block"]; !ok {
		t.Errorf("data 中缺少 reservation_block: %s", raw["data"])
	}
}

func TestReservationHandler_Reserve_ReservationConflict(t *testing.T) {
	mock := &mockReservationService{err: &service.ConflictError{
		Kind: service.ConflictWithReservation,
		Block: timeline.Block{
			Interval: timeline.Interval{Start: timeline.At(16, 0), End: timeline.At(17, 0)},
			Label:    "lee",
			Source:   timeline.SourceReservation,
		},
	}}
	w := serveReserve(NewReservationHandler(mock), jsonBody(validReserve()))

	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际 %d", w.Code)
	}
	var data dto.ConflictResponse
	parseData(t, w, &data)
	if data.Error != "conflict_with_reservation" || data.ReservationBlock == nil || data.ReservationBlock.User != "lee" {
		t.Errorf("冲突数据不符: %+v", data)
	}
}

func TestReservationHandler_Reserve_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   int
	}{
		{service.ErrInvalidTimeRange, http.StatusBadRequest, 16002},
		{service.ErrOutsideWindow, http.StatusBadRequest, 16003},
		{service.ErrRoomNotFound, http.StatusNotFound, 16004},
		{service.ErrSourceUnavailable, http.StatusServiceUnavailable, 16005},
		{service.ErrReservationConflict, http.StatusConflict, 16007},
		{errors.New("db down"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		mock := &mockReservationService{err: tt.err}
		w := serveReserve(NewReservationHandler(mock), jsonBody(validReserve()))

		if w.Code != tt.wantStatus {
			t.Errorf("%v: 期望 %d，实际 %d", tt.err, tt.wantStatus, w.Code)
		}
		if resp := parseResponse(w); resp.Code != tt.wantCode {
			t.Errorf("%v: 期望业务码 %d，实际 %d", tt.err, tt.wantCode, resp.Code)
		}
	}
}

func TestReservationHandler_ListReservations(t *testing.T) {
	mock := &mockReservationService{listResult: []dto.ReservationResponse{{ID: 1, User: "kim"}}}
	h := NewReservationHandler(mock)

	w := httptest.NewRecorder()
	r := gin.New()
	r.GET("/rooms/:id/reservations", h.ListReservations)
	r.ServeHTTP(w, httptest.NewRequest("GET", "/rooms/1/reservations?date=2025-11-10", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	var data []dto.ReservationResponse
	parseData(t, w, &data)
	if len(data) != 1 || data[0].User != "kim" {
		t.Errorf("数据不符: %+v", data)
	}
}

// ═══════════════════════════════════════════════════════════
// RoomHandler Tests
// ═══════════════════════════════════════════════════════════

func serveRoom(h *RoomHandler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := gin.New()
	r.GET("/buildings", h.ListBuildings)
	r.GET("/rooms", h.ListRooms)
	r.GET("/rooms/free-now", h.FreeNow)
	r.GET("/rooms/:id/timeline", h.GetTimeline)
	r.GET("/rooms/:id/raw-timetable", h.GetRawTimetable)
	r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func TestRoomHandler_GetTimeline_Success(t *testing.T) {
	mock := &mockRoomService{timeline: &dto.TimelineResponse{
		RoomID: 7,
		Date:   "2025-11-10",
		Blocks: []dto.TimelineBlock{{Start: "09:00", End: "18:00", Status: "free"}},
	}}
	w := serveRoom(NewRoomHandler(mock), "/rooms/7/timeline?date=2025-11-10")

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if mock.lastRoomID != 7 || mock.lastDate != "2025-11-10" {
		t.Errorf("参数传递不符: room=%d date=%s", mock.lastRoomID, mock.lastDate)
	}
	var data dto.TimelineResponse
	parseData(t, w, &data)
	if len(data.Blocks) != 1 || data.Blocks[0].Status != "free" {
		t.Errorf("数据不符: %+v", data)
	}
}

func TestRoomHandler_GetTimeline_DateOptional(t *testing.T) {
	mock := &mockRoomService{timeline: &dto.TimelineResponse{RoomID: 1}}
	w := serveRoom(NewRoomHandler(mock), "/rooms/1/timeline")

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if mock.lastDate != "" {
		t.Errorf("未传 date 时应传空串给 Service，实际 %q", mock.lastDate)
	}
}

func TestRoomHandler_GetTimeline_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"非法 ID", "/rooms/abc/timeline", nil, http.StatusBadRequest, 10001},
		{"非法日期", "/rooms/1/timeline?date=20251110", nil, http.StatusBadRequest, 16001},
		{"教室不存在", "/rooms/9/timeline", service.ErrRoomNotFound, http.StatusNotFound, 16004},
		{"数据源不可用", "/rooms/1/timeline", service.ErrSourceUnavailable, http.StatusServiceUnavailable, 16005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveRoom(NewRoomHandler(&mockRoomService{err: tt.err}), tt.path)
			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望业务码 %d，实际 %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestRoomHandler_ListRooms_QueryBinding(t *testing.T) {
	mock := &mockRoomService{rooms: []dto.RoomResponse{{ID: 1}}}
	w := serveRoom(NewRoomHandler(mock), "/rooms?building_id=3&min_capacity=30")

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	req := mock.lastRoomList
	if req == nil || req.BuildingID == nil || *req.BuildingID != 3 || req.MinCapacity == nil || *req.MinCapacity != 30 || req.Floor != nil {
		t.Errorf("查询参数绑定不符: %+v", req)
	}

	w = serveRoom(NewRoomHandler(mock), "/rooms?min_capacity=-1")
	if w.Code != http.StatusBadRequest {
		t.Errorf("负容量应返回 400，实际 %d", w.Code)
	}
}

func TestRoomHandler_FreeNow(t *testing.T) {
	mock := &mockRoomService{freeNow: &dto.FreeNowResponse{
		Timestamp: "2025-11-10T10:30:00+09:00",
		Count:     1,
		FreeRooms: []dto.RoomResponse{{ID: 2, Name: "202"}},
	}}
	w := serveRoom(NewRoomHandler(mock), "/rooms/free-now")

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	var data dto.FreeNowResponse
	parseData(t, w, &data)
	if data.Count != 1 || data.FreeRooms[0].ID != 2 {
		t.Errorf("数据不符: %+v", data)
	}
}

func TestRoomHandler_ListBuildings_InternalError(t *testing.T) {
	w := serveRoom(NewRoomHandler(&mockRoomService{err: errors.New("db down")}), "/buildings")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("期望 500，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func serveExport(h *ExportHandler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := gin.New()
	r.GET("/rooms/:id/timeline/export", h.ExportTimeline)
	r.GET("/rooms/:id/calendar.ics", h.ExportCalendar)
	r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func TestExportHandler_ExportTimeline_Success(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "timeline_1_2025-11-10.xlsx"}
	w := serveExport(NewExportHandler(mock), "/rooms/1/timeline/export?date=2025-11-10")

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type 不符: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename*=UTF-8''timeline_1_2025-11-10.xlsx" {
		t.Errorf("Content-Disposition 不符: %s", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("响应体不符: %s", w.Body.String())
	}
}

func TestExportHandler_ExportCalendar(t *testing.T) {
	mock := &mockExportService{data: []byte("BEGIN:VCALENDAR"), filename: "room_1.ics"}
	w := serveExport(NewExportHandler(mock), "/rooms/1/calendar.ics")

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != icsContentType {
		t.Errorf("Content-Type 不符: %s", ct)
	}
}

func TestExportHandler_Errors(t *testing.T) {
	w := serveExport(NewExportHandler(&mockExportService{err: service.ErrRoomNotFound}), "/rooms/1/calendar.ics")
	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际 %d", w.Code)
	}

	w = serveExport(NewExportHandler(&mockExportService{err: service.ErrExportGenerateFail}), "/rooms/1/timeline/export")
	if resp := parseResponse(w); w.Code != http.StatusInternalServerError || resp.Code != 16101 {
		t.Errorf("期望 500/16101，实际 %d/%d", w.Code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// HealthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		ping       PingFunc
		wantStatus int
	}{
		{nil, http.StatusOK},
		{func(context.Context) error { return nil }, http.StatusOK},
		{func(context.Context) error { return errors.New("down") }, http.StatusServiceUnavailable},
	}

	for i, tt := range tests {
		w := httptest.NewRecorder()
		r := gin.New()
		r.GET("/health", NewHealthHandler(tt.ping).Health)
		r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		if w.Code != tt.wantStatus {
			t.Errorf("case %d: 期望 %d，实际 %d", i, tt.wantStatus, w.Code)
		}
	}
}

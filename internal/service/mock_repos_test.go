package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"smart-campus/backend/config"
	"smart-campus/backend/internal/model"
	"smart-campus/backend/internal/repository"
	"smart-campus/backend/internal/timeline"
	pkgerrors "smart-campus/backend/pkg/errors"
)

// ── Mock BuildingRepository ──

type mockBuildingRepo struct {
	buildings map[int64]*model.Building
	nextID    int64
}

func newMockBuildingRepo() *mockBuildingRepo {
	return &mockBuildingRepo{buildings: make(map[int64]*model.Building)}
}

func (m *mockBuildingRepo) List(_ context.Context) ([]model.Building, error) {
	result := make([]model.Building, 0, len(m.buildings))
	for _, b := range m.buildings {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockBuildingRepo) FirstOrCreate(_ context.Context, name, code string) (*model.Building, error) {
	for _, b := range m.buildings {
		if b.Name == name {
			return b, nil
		}
	}
	m.nextID++
	b := &model.Building{ID: m.nextID, Name: name, Code: code}
	m.buildings[b.ID] = b
	return b, nil
}

// ── Mock RoomRepository ──

type mockRoomRepo struct {
	rooms  map[int64]*model.Room
	nextID int64
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[int64]*model.Room)}
}

func (m *mockRoomRepo) add(room *model.Room) {
	m.rooms[room.ID] = room
	if room.ID > m.nextID {
		m.nextID = room.ID
	}
}

func (m *mockRoomRepo) GetByID(_ context.Context, id int64) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) List(_ context.Context, filter model.RoomFilter) ([]model.Room, error) {
	var result []model.Room
	for _, r := range m.rooms {
		if filter.BuildingID != nil && r.BuildingID != *filter.BuildingID {
			continue
		}
		if filter.Floor != nil && r.Floor != *filter.Floor {
			continue
		}
		if filter.MinCapacity != nil && r.Capacity < *filter.MinCapacity {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockRoomRepo) FirstOrCreate(_ context.Context, buildingID int64, name string) (*model.Room, error) {
	for _, r := range m.rooms {
		if r.BuildingID == buildingID && r.Name == name {
			return r, nil
		}
	}
	m.nextID++
	r := &model.Room{ID: m.nextID, BuildingID: buildingID, Name: name}
	m.rooms[r.ID] = r
	return r, nil
}

// ── Mock TimetableRepository ──

type mockTimetableRepo struct {
	rows []model.RoomTimetable
	// failRooms 中的教室读取时返回错误
	failRooms map[int64]bool
}

func newMockTimetableRepo() *mockTimetableRepo {
	return &mockTimetableRepo{failRooms: make(map[int64]bool)}
}

func (m *mockTimetableRepo) add(roomID int64, weekday int, text string, periods ...int) {
	for _, p := range periods {
		m.rows = append(m.rows, model.RoomTimetable{RoomID: roomID, Weekday: weekday, Period: p, RawText: text})
	}
}

func (m *mockTimetableRepo) ListByRoomAndWeekday(_ context.Context, roomID int64, weekday int) ([]model.RoomTimetable, error) {
	if m.failRooms[roomID] {
		return nil, fmt.Errorf("connection refused")
	}
	var result []model.RoomTimetable
	for _, r := range m.rows {
		if r.RoomID == roomID && r.Weekday == weekday && r.RawText != "" {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Period < result[j].Period })
	return result, nil
}

func (m *mockTimetableRepo) ListByRoom(_ context.Context, roomID int64) ([]model.RoomTimetable, error) {
	if m.failRooms[roomID] {
		return nil, fmt.Errorf("connection refused")
	}
	var result []model.RoomTimetable
	for _, r := range m.rows {
		if r.RoomID == roomID {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Weekday != result[j].Weekday {
			return result[i].Weekday < result[j].Weekday
		}
		return result[i].Period < result[j].Period
	})
	return result, nil
}

func (m *mockTimetableRepo) ReplaceByRoom(_ context.Context, roomID int64, rows []model.RoomTimetable) error {
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.RoomID != roomID {
			kept = append(kept, r)
		}
	}
	m.rows = append(kept, rows...)
	return nil
}

// ── Mock ReservationRepository ──
// 与数据库排他约束一致：同一教室同一天的重叠预约返回 ErrReservationOverlap

type mockReservationRepo struct {
	mu        sync.Mutex
	list      []model.Reservation
	nextID    int64
	failRooms map[int64]bool
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{failRooms: make(map[int64]bool)}
}

func (m *mockReservationRepo) ListByRoomAndDate(_ context.Context, roomID int64, date time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRooms[roomID] {
		return nil, fmt.Errorf("connection refused")
	}
	var result []model.Reservation
	for _, r := range m.list {
		if r.RoomID == roomID && sameDay(r.Date, date) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockReservationRepo) Create(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	proposed, err := timeline.ParseStoredInterval(res.StartTime, res.EndTime)
	if err != nil {
		return err
	}
	for _, r := range m.list {
		if r.RoomID != res.RoomID || !sameDay(r.Date, res.Date) {
			continue
		}
		existing, _ := timeline.ParseStoredInterval(r.StartTime, r.EndTime)
		if existing.Overlaps(proposed) {
			return pkgerrors.ErrReservationOverlap
		}
	}
	m.nextID++
	res.ID = m.nextID
	res.CreatedAt = time.Now()
	m.list = append(m.list, *res)
	return nil
}

func (m *mockReservationRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.list)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// ── Mock RoomDateLocker ──
// 每个 (教室, 日期) 一把互斥锁，fn 收到同一个 Repository

type mockLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	repo  *repository.Repository
}

func newMockLocker() *mockLocker {
	return &mockLocker{locks: make(map[string]*sync.Mutex)}
}

func (m *mockLocker) WithRoomDateLock(_ context.Context, roomID int64, date time.Time, fn func(tx *repository.Repository) error) error {
	key := fmt.Sprintf("%d/%s", roomID, date.Format("2006-01-02"))

	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn(m.repo)
}

// ── Mock EventPublisher ──

type mockPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, routingKey string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, routingKey)
	return nil
}

// ── Fixed Clock ──

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// ── 测试夹具 ──

type testFixture struct {
	svc          *Service
	buildings    *mockBuildingRepo
	rooms        *mockRoomRepo
	timetable    *mockTimetableRepo
	reservations *mockReservationRepo
	publisher    *mockPublisher
}

// 2025-11-10 为周一
var testMonday = time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)

func newTestConfig() *config.Config {
	return &config.Config{
		Timeline: config.TimelineConfig{
			Timezone:    "UTC",
			WindowStart: "09:00",
			WindowEnd:   "18:00",
		},
	}
}

// setupTestFixture 构造带两个教室的服务；now 为时钟时间
func setupTestFixture(now time.Time) *testFixture {
	fx := &testFixture{
		buildings:    newMockBuildingRepo(),
		rooms:        newMockRoomRepo(),
		timetable:    newMockTimetableRepo(),
		reservations: newMockReservationRepo(),
		publisher:    &mockPublisher{},
	}
	locker := newMockLocker()
	repo := &repository.Repository{
		Building:    fx.buildings,
		Room:        fx.rooms,
		Timetable:   fx.timetable,
		Reservation: fx.reservations,
		Locker:      locker,
	}
	locker.repo = repo

	b, _ := fx.buildings.FirstOrCreate(context.Background(), "프라임관", "PRIME")
	fx.rooms.add(&model.Room{ID: 1, BuildingID: b.ID, Name: "101", Floor: 1, Capacity: 40})
	fx.rooms.add(&model.Room{ID: 2, BuildingID: b.ID, Name: "202", Floor: 2, Capacity: 120})

	svc, err := NewService(newTestConfig(), repo, fx.publisher, fixedClock{t: now}, zap.NewNop())
	if err != nil {
		panic(err)
	}
	fx.svc = svc
	return fx
}

package model

import "time"

// RoomTimetable 教室周课表 — 对应 room_timetable
// 每行对应 (教室, 星期, 节次) 的一格，RawText 为抓取到的原始单元格文本
type RoomTimetable struct {
	ID        int64     `gorm:"primaryKey"                           json:"id"`
	RoomID    int64     `gorm:"not null"                             json:"room_id"`
	Period    int       `gorm:"type:smallint;not null"               json:"period"`
	Weekday   int       `gorm:"type:smallint;not null"               json:"weekday"` // 1=周一 … 7=周日
	RawText   string    `gorm:"type:text;not null;default:''"        json:"raw_text"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"   json:"created_at"`
}

// TableName 指定表名
func (RoomTimetable) TableName() string { return "room_timetable" }

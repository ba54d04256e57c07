package model

import "time"

// Reservation 教室预约 — 对应 reservation（只追加）
// 同一教室的 [date+start_time, date+end_time) 由数据库排他约束保证互不重叠
type Reservation struct {
	ID        int64     `gorm:"primaryKey"                         json:"id"`
	RoomID    int64     `gorm:"not null"                           json:"room_id"`
	Date      time.Time `gorm:"type:date;not null"                 json:"date"`
	StartTime string    `gorm:"type:time;not null"                 json:"start_time"`
	EndTime   string    `gorm:"type:time;not null"                 json:"end_time"`
	UserName  string    `gorm:"type:varchar(100);not null"         json:"user_name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Reservation) TableName() string { return "reservation" }

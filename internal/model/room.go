package model

// Room 教室表 — 对应 room，(building_id, name) 唯一
type Room struct {
	ID         int64  `gorm:"primaryKey"                json:"id"`
	BuildingID int64  `gorm:"not null;index"            json:"building_id"`
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	Floor      int    `gorm:"not null;default:0"        json:"floor"`
	Capacity   int    `gorm:"not null;default:0"        json:"capacity"`
	Timestamps

	// 关联
	Building *Building `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
}

// TableName 指定表名
func (Room) TableName() string { return "room" }

// RoomFilter 教室列表筛选条件，nil 表示不过滤
type RoomFilter struct {
	BuildingID  *int64
	Floor       *int
	MinCapacity *int
}

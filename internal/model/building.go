package model

// Building 建筑表 — 对应 building
type Building struct {
	ID   int64  `gorm:"primaryKey"                          json:"id"`
	Code string `gorm:"type:varchar(50);not null"           json:"code"`
	Name string `gorm:"type:varchar(100);not null;unique"   json:"name"`
	Timestamps
}

// TableName 指定表名
func (Building) TableName() string { return "building" }

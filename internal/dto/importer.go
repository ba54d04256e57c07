package dto

// ImportResult 单个课表文件导入结果
type ImportResult struct {
	Building string `json:"building"`
	Room     string `json:"room"`
	RoomID   int64  `json:"room_id"`
	Rows     int    `json:"rows"`
}

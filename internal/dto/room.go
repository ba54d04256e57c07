package dto

// ── 建筑 / 教室模块 DTO ──

// BuildingResponse 建筑信息响应
type BuildingResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// RoomListRequest 教室列表查询参数
type RoomListRequest struct {
	BuildingID  *int64 `form:"building_id"  binding:"omitempty,min=1"`
	Floor       *int   `form:"floor"`
	MinCapacity *int   `form:"min_capacity" binding:"omitempty,min=0"`
}

// FreeNowRequest 当前空闲教室查询参数
type FreeNowRequest struct {
	BuildingID  *int64 `form:"building_id"  binding:"omitempty,min=1"`
	MinCapacity *int   `form:"min_capacity" binding:"omitempty,min=0"`
}

// RoomResponse 教室信息响应
type RoomResponse struct {
	ID         int64  `json:"id"`
	BuildingID int64  `json:"building_id"`
	Name       string `json:"name"`
	Floor      int    `json:"floor"`
	Capacity   int    `json:"capacity"`
}

// FreeNowResponse 当前空闲教室响应
type FreeNowResponse struct {
	Timestamp string         `json:"timestamp"` // RFC3339，时间轴时区
	Count     int            `json:"count"`
	FreeRooms []RoomResponse `json:"free_rooms"`
}

// RawTimetableEntry 原始课表单元格
type RawTimetableEntry struct {
	Period  int    `json:"period"`
	Weekday int    `json:"weekday"`
	RawText string `json:"raw_text"`
}

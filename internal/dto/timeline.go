package dto

// ── 时间轴模块 DTO ──

// DateQuery 按日期查询参数；date 为空时取时间轴时区的今天
type DateQuery struct {
	Date string `form:"date" binding:"omitempty,isodate"`
}

// TimelineBlock 时间轴分段；status 为 free 或 occupied，label 仅 occupied 段可能非空
type TimelineBlock struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Status string `json:"status"`
	Label  string `json:"label,omitempty"`
}

// ClassBlockResponse 合并后的上课时段
type ClassBlockResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

// ReservationBlockResponse 预约时段
type ReservationBlockResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	User  string `json:"user"`
}

// TimelineResponse 教室单日时间轴
type TimelineResponse struct {
	RoomID       int64                      `json:"room_id"`
	Date         string                     `json:"date"`
	Blocks       []TimelineBlock            `json:"blocks"`
	Classes      []ClassBlockResponse       `json:"classes"`
	Reservations []ReservationBlockResponse `json:"reservations"`
}

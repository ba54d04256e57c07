package dto

// ── 预约模块 DTO ──

// ReserveRequest 预约请求
type ReserveRequest struct {
	RoomID int64  `json:"room_id" binding:"required,min=1"`
	Date   string `json:"date"    binding:"required,isodate"`
	Start  string `json:"start"   binding:"required,hhmm"`
	End    string `json:"end"     binding:"required,hhmm"`
	User   string `json:"user"    binding:"required,min=1,max=100"`
}

// ReserveResponse 预约成功响应
type ReserveResponse struct {
	Message string `json:"message"`
	RoomID  int64  `json:"room_id"`
	Date    string `json:"date"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// ConflictBlock 冲突对象；上课冲突带 label，预约冲突带 user
type ConflictBlock struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label,omitempty"`
	User  string `json:"user,omitempty"`
}

// ConflictResponse 409 响应数据
type ConflictResponse struct {
	Error            string         `json:"error"` // conflict_with_class | conflict_with_reservation
	ClassBlock       *ConflictBlock `json:"class_block,omitempty"`
	ReservationBlock *ConflictBlock `json:"reservation_block,omitempty"`
}

// ReservationResponse 预约记录
type ReservationResponse struct {
	ID        int64  `json:"id"`
	RoomID    int64  `json:"room_id"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	User      string `json:"user"`
	CreatedAt string `json:"created_at"`
}

// ReservationCreatedEvent reservation.created 事件负载
type ReservationCreatedEvent struct {
	ReservationID int64  `json:"reservation_id"`
	RoomID        int64  `json:"room_id"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	End           string `json:"end"`
	User          string `json:"user"`
	CreatedAt     string `json:"created_at"`
}

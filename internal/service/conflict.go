package service

import (
	"context"
	"fmt"
	"time"

	"smart-campus/backend/internal/timeline"
)

// ConflictKind 冲突来源
type ConflictKind string

const (
	ConflictWithClass       ConflictKind = "conflict_with_class"
	ConflictWithReservation ConflictKind = "conflict_with_reservation"
)

// ConflictError 拟预约区间与已有占用块重叠
type ConflictError struct {
	Kind  ConflictKind
	Block timeline.Block
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Kind, e.Block.Interval, e.Block.Label)
}

// ConflictChecker 检查拟预约区间与课表、已有预约是否冲突
type ConflictChecker struct {
	occupancy *Occupancy
}

// NewConflictChecker 创建 ConflictChecker
func NewConflictChecker(occupancy *Occupancy) *ConflictChecker {
	return &ConflictChecker{occupancy: occupancy}
}

// Check 先扫描上课块，命中即返回；再扫描预约块。
// 无冲突返回 nil，冲突返回 *ConflictError，数据源失败返回 ErrSourceUnavailable。
// 首尾相接不算冲突。
func (c *ConflictChecker) Check(ctx context.Context, roomID int64, date time.Time, proposed timeline.Interval) error {
	classes, err := c.occupancy.ClassBlocks(ctx, roomID, date)
	if err != nil {
		return err
	}
	for _, b := range classes {
		if b.Overlaps(proposed) {
			return &ConflictError{Kind: ConflictWithClass, Block: b}
		}
	}

	reservations, err := c.occupancy.ReservationBlocks(ctx, roomID, date)
	if err != nil {
		return err
	}
	for _, b := range reservations {
		if b.Overlaps(proposed) {
			return &ConflictError{Kind: ConflictWithReservation, Block: b}
		}
	}
	return nil
}

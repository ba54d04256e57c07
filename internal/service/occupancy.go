package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smart-campus/backend/internal/repository"
	"smart-campus/backend/internal/timeline"
)

// ErrSourceUnavailable 课表或预约数据读取失败
// 调用方不得将其视为"无占用"
var ErrSourceUnavailable = errors.New("占用数据源暂不可用")

// Occupancy 两类占用数据源的适配器：周课表与预约记录
type Occupancy struct {
	repo *repository.Repository
}

// NewOccupancy 创建 Occupancy；repo 可以是绑定在事务上的 Repository
func NewOccupancy(repo *repository.Repository) *Occupancy {
	return &Occupancy{repo: repo}
}

// ClassBlocks 返回教室在 date 对应星期的上课块。
// 连续节次且原始文本相同的格子合并为一块，未知节次被忽略。
func (o *Occupancy) ClassBlocks(ctx context.Context, roomID int64, date time.Time) ([]timeline.Block, error) {
	rows, err := o.repo.Timetable.ListByRoomAndWeekday(ctx, roomID, timeline.Weekday(date))
	if err != nil {
		return nil, fmt.Errorf("%w: 读取课表失败: %v", ErrSourceUnavailable, err)
	}

	entries := make([]timeline.PeriodEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, timeline.PeriodEntry{Period: r.Period, RawText: r.RawText})
	}
	return timeline.ClassBlocks(entries), nil
}

// ReservationBlocks 返回教室在 date 当天的预约块，按开始时间排序，标签为预约人
func (o *Occupancy) ReservationBlocks(ctx context.Context, roomID int64, date time.Time) ([]timeline.Block, error) {
	list, err := o.repo.Reservation.ListByRoomAndDate(ctx, roomID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取预约失败: %v", ErrSourceUnavailable, err)
	}

	blocks := make([]timeline.Block, 0, len(list))
	for _, r := range list {
		iv, err := timeline.ParseStoredInterval(r.StartTime, r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: 预约 %d 时间无效: %v", ErrSourceUnavailable, r.ID, err)
		}
		blocks = append(blocks, timeline.Block{Interval: iv, Label: r.UserName, Source: timeline.SourceReservation})
	}
	return blocks, nil
}

// Blocks 同时读取两类占用块
func (o *Occupancy) Blocks(ctx context.Context, roomID int64, date time.Time) (classes, reservations []timeline.Block, err error) {
	if classes, err = o.ClassBlocks(ctx, roomID, date); err != nil {
		return nil, nil, err
	}
	if reservations, err = o.ReservationBlocks(ctx, roomID, date); err != nil {
		return nil, nil, err
	}
	return classes, reservations, nil
}

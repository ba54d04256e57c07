package timeline

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyInterval 区间起点不早于终点
var ErrEmptyInterval = errors.New("结束时间必须晚于开始时间")

// Interval 半开区间 [Start, End)
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewInterval 构造区间并校验 Start < End
func NewInterval(start, end TimeOfDay) (Interval, error) {
	if start >= end {
		return Interval{}, fmt.Errorf("%w: %s-%s", ErrEmptyInterval, start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// ParseInterval 解析一对 "HH:MM" 字符串
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(s, e)
}

// ParseStoredInterval 同 ParseInterval，但接受数据库读出的 "HH:MM:SS"
func ParseStoredInterval(start, end string) (Interval, error) {
	s, err := ParseStoredTime(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseStoredTime(end)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(s, e)
}

// Overlaps 两个半开区间是否共享任一时刻。首尾相接（a.End == b.Start）不算重叠。
func (i Interval) Overlaps(o Interval) bool {
	return !(i.End <= o.Start || o.End <= i.Start)
}

// Contains 判断 t 是否落在 [Start, End) 内
func (i Interval) Contains(t TimeOfDay) bool {
	return i.Start <= t && t < i.End
}

// Covers 判断 o 是否完全位于 i 内
func (i Interval) Covers(o Interval) bool {
	return i.Start <= o.Start && o.End <= i.End
}

// Minutes 区间长度（分钟）
func (i Interval) Minutes() int {
	return int(i.End - i.Start)
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// Merge 将区间合并为有序、两两不相交的序列。
// 相接的区间（s == 当前 end）同样合并，保证结果中不存在零间隔的相邻占用段。
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Start < sorted[b].Start })

	merged := make([]Interval, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if next.Start > cur.End {
			merged = append(merged, cur)
			cur = next
			continue
		}
		if next.End > cur.End {
			cur.End = next.End
		}
	}
	merged = append(merged, cur)
	return merged
}

// Complement 返回 window 内未被 merged 覆盖的空闲区间。
// merged 须为 Merge 的输出。
func Complement(merged []Interval, window Interval) []Interval {
	var free []Interval
	for _, seg := range Partition(merged, window) {
		if seg.Status == StatusFree {
			free = append(free, seg.Interval)
		}
	}
	return free
}

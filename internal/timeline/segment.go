package timeline

import (
	"sort"
	"strings"
)

// Source 占用来源
type Source string

const (
	SourceClass       Source = "class"
	SourceReservation Source = "reservation"
)

// Block 带标签的占用区间（课程或预约）
type Block struct {
	Interval
	Label  string
	Source Source
}

// Status 时间轴片段状态
type Status string

const (
	StatusFree     Status = "free"
	StatusOccupied Status = "occupied"
)

// Segment 时间轴上的一个片段
type Segment struct {
	Interval
	Status Status
	Labels []string // 仅 occupied 片段有值
}

// Label 将片段覆盖的所有标签以 " / " 拼接
func (s Segment) Label() string {
	return strings.Join(s.Labels, " / ")
}

// Partition 以 window 为界，将 merged 切分为交替的 free / occupied 片段。
//
// 完全位于窗口外的占用区间被丢弃，跨越窗口边界的区间被裁剪到窗口内，
// 因此输出总是恰好铺满 window，不存在负长度片段。
func Partition(merged []Interval, window Interval) []Segment {
	segments := make([]Segment, 0, 2*len(merged)+1)
	cursor := window.Start

	for _, m := range merged {
		if m.End <= window.Start || m.Start >= window.End {
			continue
		}
		start, end := m.Start, m.End
		if start < cursor {
			start = cursor
		}
		if end > window.End {
			end = window.End
		}
		if start >= end {
			continue
		}
		if cursor < start {
			segments = append(segments, Segment{Interval: Interval{Start: cursor, End: start}, Status: StatusFree})
		}
		segments = append(segments, Segment{Interval: Interval{Start: start, End: end}, Status: StatusOccupied})
		cursor = end
	}

	if cursor < window.End {
		segments = append(segments, Segment{Interval: Interval{Start: cursor, End: window.End}, Status: StatusFree})
	}
	return segments
}

// Build 由两类占用块生成一天的时间轴。
// 每个 occupied 片段携带与该片段（裁剪后）重叠的块标签，按开始时间排序、去重；
// 完全落在窗口外的块不贡献标签。
func Build(blocks []Block, window Interval) []Segment {
	ordered := make([]Block, len(blocks))
	copy(ordered, blocks)
	sort.SliceStable(ordered, func(a, b int) bool { return ordered[a].Start < ordered[b].Start })

	segments := Partition(Merge(Intervals(ordered)), window)
	for i := range segments {
		if segments[i].Status != StatusOccupied {
			continue
		}
		seen := make(map[string]bool)
		for _, b := range ordered {
			if !b.Overlaps(segments[i].Interval) || b.Label == "" || seen[b.Label] {
				continue
			}
			seen[b.Label] = true
			segments[i].Labels = append(segments[i].Labels, b.Label)
		}
	}
	return segments
}

// Intervals 提取块的区间
func Intervals(blocks []Block) []Interval {
	out := make([]Interval, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Interval)
	}
	return out
}

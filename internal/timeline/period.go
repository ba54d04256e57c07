package timeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ── 节次 → 时间映射 ──
//
// 每节 50 分钟，节间休息 10 分钟，第 1 节 09:00 开始，共 9 节。

// ErrUnknownPeriod 节次不在映射表内
var ErrUnknownPeriod = errors.New("未知节次")

const (
	periodCount    = 9
	periodMinutes  = 50
	breakMinutes   = 10
	firstPeriodMin = 9 * 60
)

var periodTable = func() map[int]Interval {
	table := make(map[int]Interval, periodCount)
	for p := 1; p <= periodCount; p++ {
		start := TimeOfDay(firstPeriodMin + (p-1)*(periodMinutes+breakMinutes))
		table[p] = Interval{Start: start, End: start + periodMinutes}
	}
	return table
}()

// TimeOf 返回节次对应的时间区间；节次未知时返回 ErrUnknownPeriod
func TimeOf(period int) (Interval, error) {
	iv, ok := periodTable[period]
	if !ok {
		return Interval{}, fmt.Errorf("%w: %d", ErrUnknownPeriod, period)
	}
	return iv, nil
}

// PeriodEntry 某间教室某天的一条课表记录
type PeriodEntry struct {
	Period  int
	RawText string
}

// ClassBlocks 将一天的课表记录转换为课程占用块。
//
// 规则：
//   - 未知节次直接丢弃（无法渲染，也不应导致整个请求失败）
//   - 相邻节次（p, p+1）且原始文本完全相同的记录合并为一个块，
//     中间 10 分钟课间计入课程时间
//   - 文本相同但节次不相邻的记录各自成块
func ClassBlocks(entries []PeriodEntry) []Block {
	sorted := make([]PeriodEntry, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.RawText) == "" {
			continue
		}
		if _, err := TimeOf(e.Period); err != nil {
			continue
		}
		sorted = append(sorted, e)
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Period < sorted[b].Period })

	blocks := make([]Block, 0, len(sorted))
	cur := sorted[0]
	span, _ := TimeOf(cur.Period)
	for _, e := range sorted[1:] {
		iv, _ := TimeOf(e.Period)
		if e.Period == cur.Period+1 && e.RawText == cur.RawText {
			span.End = iv.End
			cur.Period = e.Period
			continue
		}
		blocks = append(blocks, Block{Interval: span, Label: ParseClassLabel(cur.RawText), Source: SourceClass})
		cur, span = e, iv
	}
	blocks = append(blocks, Block{Interval: span, Label: ParseClassLabel(cur.RawText), Source: SourceClass})
	return blocks
}

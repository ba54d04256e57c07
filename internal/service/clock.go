package service

import (
	"fmt"
	"time"

	"smart-campus/backend/config"
	"smart-campus/backend/internal/timeline"
)

// Clock 当前时间来源，测试中可替换为固定时钟
type Clock interface {
	Now() time.Time
}

// SystemClock 使用系统时间
type SystemClock struct{}

// Now 返回系统当前时间
func (SystemClock) Now() time.Time { return time.Now() }

// Calendar 运营时段与时区
// 日期统一表示为 UTC 零点，只使用年月日
type Calendar struct {
	window timeline.Interval
	loc    *time.Location
	clock  Clock
}

func NewCalendar(cfg *config.TimelineConfig, clock Clock) (*Calendar, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("加载时区 %q 失败: %w", cfg.Timezone, err)
	}
	window, err := timeline.ParseInterval(cfg.WindowStart, cfg.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("运营时段配置无效: %w", err)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Calendar{window: window, loc: loc, clock: clock}, nil
}

// now 时间轴时区下的当前时间
func (c *Calendar) now() time.Time {
	return c.clock.Now().In(c.loc)
}

// today 时间轴时区下的今天
func (c *Calendar) today() time.Time {
	n := c.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// resolveDate 解析 "YYYY-MM-DD"，空串取今天
func (c *Calendar) resolveDate(s string) (time.Time, error) {
	if s == "" {
		return c.today(), nil
	}
	return timeline.ParseDate(s)
}

// at 将日期与时刻组合为时间轴时区下的绝对时间
func (c *Calendar) at(date time.Time, t timeline.TimeOfDay) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(t)/60, int(t)%60, 0, 0, c.loc)
}

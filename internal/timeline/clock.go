package timeline

import (
	"errors"
	"fmt"
	"time"
)

// ── 时间与日期解析 ──

var (
	ErrInvalidTime = errors.New("时间格式无效，应为 HH:MM")
	ErrInvalidDate = errors.New("日期格式无效，应为 YYYY-MM-DD")
)

// DateLayout 对外统一的日期格式
const DateLayout = "2006-01-02"

// TimeOfDay 一天中的分钟数（0 ~ 1439），精度到分钟
type TimeOfDay int

// At 由时、分构造 TimeOfDay
func At(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay 严格解析 "HH:MM"，用于请求参数与配置
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return At(t.Hour(), t.Minute()), nil
}

// ParseStoredTime 解析数据库 TIME 列读出的值："HH:MM" 或 "HH:MM:SS"，秒被截断
func ParseStoredTime(s string) (TimeOfDay, error) {
	if len(s) != 8 {
		return ParseTimeOfDay(s)
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return At(t.Hour(), t.Minute()), nil
}

// FromTime 取 t 的本地时分
func FromTime(t time.Time) TimeOfDay {
	return At(t.Hour(), t.Minute())
}

// String 格式化为 "HH:MM"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ParseDate 解析 "YYYY-MM-DD"
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// Weekday 返回星期编码：1=周一 … 7=周日。
// 课表行的 weekday 字段使用同一编码。
func Weekday(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

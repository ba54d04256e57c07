package timeline

import "strings"

// undergradPrefix 抓取到的课表首行固定前缀
const undergradPrefix = "(학부)"

// ParseClassLabel 将课表原始文本转换为 "课程名 (分班)"。
//
// 原始文本示例：
//
//	(학부) 자동차진동제어및실습
//	379052 / 01분반
//	장일도 / 19명
//
// 输出 "자동차진동제어및실습 (01분반)"。第二行缺失或不含 "/" 时仅返回课程名。
func ParseClassLabel(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ""
	}

	title := strings.TrimSpace(strings.ReplaceAll(lines[0], undergradPrefix, ""))

	section := ""
	if len(lines) >= 2 {
		if parts := strings.Split(lines[1], "/"); len(parts) >= 2 {
			section = strings.TrimSpace(parts[1])
		}
	}

	if section != "" {
		return title + " (" + section + ")"
	}
	return title
}

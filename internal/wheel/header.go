package wheel

import "strings"

// Header 是 RFC 822 风格头部块解析结果：小写键 → 按出现顺序排列的值。
type Header map[string][]string

// Get 返回键的第一个值。
func (h Header) Get(key string) (string, bool) {
	values := h[strings.ToLower(key)]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Values 返回键的全部值。
func (h Header) Values(key string) []string {
	return h[strings.ToLower(key)]
}

// ParseHeaderBlock 解析 `Key: Value` 行序列。
//
// 空行或不含冒号的行结束头部块；以空格/制表符开头的行是上一个值的续行，
// 以单个空格拼接。重复的键保留全部值。
func ParseHeaderBlock(text string) Header {
	h := Header{}
	lastKey := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			if lastKey == "" {
				break
			}
			values := h[lastKey]
			cont := strings.TrimSpace(line)
			if cont != "" {
				if values[len(values)-1] == "" {
					values[len(values)-1] = cont
				} else {
					values[len(values)-1] += " " + cont
				}
			}
			continue
		}

		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			break
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		if key == "" {
			break
		}
		h[key] = append(h[key], strings.TrimSpace(line[idx+1:]))
		lastKey = key
	}
	return h
}

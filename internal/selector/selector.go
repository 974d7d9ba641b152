// Package selector matches canonical wheel filenames against shell-style
// glob patterns with fnmatch semantics.
package selector

import (
	"fmt"
	"path"
	"runtime"
	"strings"
)

// Selector 以 shell 风格通配符（*、?、[seq]、[!seq]）匹配完整的 wheel 文件名。
// 空 Selector 选中全部。
type Selector struct {
	patterns []pattern
	fold     bool
}

// pattern 是转换成 path.Match 语法后的通配符；never 表示永远不会匹配
// （例如只含反向区间的字符类）。
type pattern struct {
	expr  string
	never bool
}

// New 编译通配符。fnmatch 语义下任何字符串都是合法模式，
// 返回错误只说明转换结果无法被 path.Match 接受。
func New(patterns []string) (Selector, error) {
	return newSelector(patterns, runtime.GOOS == "windows")
}

func newSelector(patterns []string, fold bool) (Selector, error) {
	sel := Selector{fold: fold}
	for _, raw := range patterns {
		p := raw
		if fold {
			p = strings.ToLower(p)
		}
		compiled := translatePattern(p)
		if _, err := path.Match(compiled.expr, ""); err != nil {
			return Selector{}, fmt.Errorf("invalid select pattern %q: %w", raw, err)
		}
		sel.patterns = append(sel.patterns, compiled)
	}
	return sel, nil
}

// Match 判断 name 是否被选中。
func (s Selector) Match(name string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	if s.fold {
		name = strings.ToLower(name)
	}
	for _, p := range s.patterns {
		if p.never {
			continue
		}
		if ok, _ := path.Match(p.expr, name); ok {
			return true
		}
	}
	return false
}

// translatePattern 按 fnmatch 规则把模式转换为 path.Match 语法：
// 除 * ? 外的字符都按字面量转义；没有闭合 ] 的 [ 是字面量；
// 字符类开头（含 ! 之后）的 ] 是字面量；[!seq] 转为 [^seq]。
func translatePattern(p string) pattern {
	runes := []rune(p)
	var sb strings.Builder
	never := false
	for i := 0; i < len(runes); {
		c := runes[i]
		switch c {
		case '*', '?':
			sb.WriteRune(c)
			i++
		case '[':
			end := classEnd(runes, i)
			if end < 0 {
				sb.WriteString(`\[`)
				i++
				continue
			}
			class, ok := translateClass(runes[i+1 : end])
			if !ok {
				never = true
			}
			sb.WriteString(class)
			i = end + 1
		default:
			sb.WriteByte('\\')
			sb.WriteRune(c)
			i++
		}
	}
	return pattern{expr: sb.String(), never: never}
}

// classEnd 返回 runes[start] 处 [ 对应的闭合 ] 下标，没有时返回 -1。
func classEnd(runes []rune, start int) int {
	j := start + 1
	if j < len(runes) && runes[j] == '!' {
		j++
	}
	if j < len(runes) && runes[j] == ']' {
		j++
	}
	for j < len(runes) && runes[j] != ']' {
		j++
	}
	if j >= len(runes) {
		return -1
	}
	return j
}

// translateClass 转换 [ 与 ] 之间的内容。区间 lo-hi 保留，其余字符逐个转义；
// 反向区间被丢弃。ok 为 false 表示该字符类为空、不可能匹配任何字符。
func translateClass(body []rune) (string, bool) {
	negate := len(body) > 0 && body[0] == '!'
	if negate {
		body = body[1:]
	}

	var items strings.Builder
	for i := 0; i < len(body); {
		if i+2 < len(body) && body[i+1] == '-' {
			lo, hi := body[i], body[i+2]
			if lo <= hi {
				items.WriteString(`\` + string(lo) + `-\` + string(hi))
			}
			i += 3
			continue
		}
		items.WriteString(`\` + string(body[i]))
		i++
	}

	if items.Len() == 0 {
		if negate {
			return "?", true
		}
		return "", false
	}
	if negate {
		return "[^" + items.String() + "]", true
	}
	return "[" + items.String() + "]", true
}

package decay

import "strings"

// Span: 一对匹配括号的内容。
// Depth 为弹栈后仍处于打开状态的括号数（0 = 最外层括号）；根层内容不构成 Span。
type Span struct {
	Depth   int
	Start   int // '[' 的偏移
	End     int // ']' 的偏移
	Content string
}

// Normalize 折叠连续空白为单个空格，并去掉紧贴 '[' 之后与 ']' 之前的空白。
// 之后的 token 与 span 均可按单个空格切分。
func Normalize(notation string) string {
	s := strings.Join(strings.Fields(notation), " ")
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			if i > 0 && s[i-1] == '[' {
				continue
			}
			if i+1 < len(s) && s[i+1] == ']' {
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Spans 单遍扫描，按闭括号出现顺序返回所有括号内容（嵌套时内层在前）。
// 多余的 ']' 不产出 span，仅记录为 Warning。
// 解析不依赖它；用于诊断输出（decay --json 的 spans 字段）。
func Spans(notation string) ([]Span, []Warning) {
	var (
		stack []int
		spans []Span
		warns []Warning
	)
	for i := 0; i < len(notation); i++ {
		switch notation[i] {
		case '[':
			stack = append(stack, i)
		case ']':
			if len(stack) == 0 {
				warns = append(warns, Warning{Kind: KindUnmatchedClosingBracket, Offset: i})
				continue
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			spans = append(spans, Span{Depth: len(stack), Start: start, End: i, Content: notation[start+1 : i]})
		}
	}
	return spans, warns
}

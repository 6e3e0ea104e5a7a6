package decay

import (
	"errors"
	"fmt"
)

// 解析错误的最小分类（errors.Is 可匹配）。
var (
	// ErrUnresolvableSpan: 括号无法归属到任何粒子，或括号未闭合；整体失败。
	ErrUnresolvableSpan = errors.New("unresolvable span")
	// ErrUnmatchedClosingBracket: 多余的 ']'；默认仅告警，严格模式下失败。
	ErrUnmatchedClosingBracket = errors.New("unmatched closing bracket")
)

// Kind 标识语法问题的类别。
type Kind string

const (
	KindUnresolvableSpan        Kind = "unresolvable_span"
	KindUnmatchedClosingBracket Kind = "unmatched_closing_bracket"
)

// SyntaxError 携带出错位置（规范化后字符串中的字节偏移）。
type SyntaxError struct {
	Kind     Kind
	Offset   int
	Notation string
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("decay: %s at offset %d in %q: %s", e.Kind, e.Offset, e.Notation, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	switch e.Kind {
	case KindUnmatchedClosingBracket:
		return ErrUnmatchedClosingBracket
	default:
		return ErrUnresolvableSpan
	}
}

// Warning 为可恢复的问题（宽松模式下的多余 ']'）。
type Warning struct {
	Kind   Kind
	Offset int
}

func (w Warning) String() string { return fmt.Sprintf("%s at offset %d", w.Kind, w.Offset) }

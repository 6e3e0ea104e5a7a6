package decay

import "strings"

// Node: 衰变树节点。Children 为紧随其后的衰变括号内容；
// Decays 表示该粒子带有衰变括号（可能为空括号 []）。
type Node struct {
	Token    string
	Offset   int
	Decays   bool
	Children []*Node
}

// Tree: 单次解析的结果，返回后只读。
// Roots 为初态粒子；MaxDepth 为出现过的最大括号深度（无括号时为 0）。
type Tree struct {
	Notation string
	Roots    []*Node
	MaxDepth int
	Warnings []Warning
}

// Options 控制解析严格程度。
type Options struct {
	// Strict: 多余的 ']' 视为致命错误而非告警。
	Strict bool
}

// Parse 以宽松模式解析衰变表达式。
func Parse(notation string) (*Tree, error) { return ParseWith(notation, Options{}) }

// ParseWith 单遍构建衰变树：'[' 归属于同层最近的粒子，']' 回到父层。
// 出错时不返回部分结果。
func ParseWith(notation string, opts Options) (*Tree, error) {
	s := Normalize(notation)
	t := &Tree{Notation: s}

	type frame struct {
		nodes *[]*Node
		open  int // '[' 偏移；根层为 -1
	}
	stack := []frame{{nodes: &t.Roots, open: -1}}
	var last *Node
	tokStart := -1

	flush := func(end int) {
		if tokStart < 0 {
			return
		}
		n := &Node{Token: s[tokStart:end], Offset: tokStart}
		top := stack[len(stack)-1]
		*top.nodes = append(*top.nodes, n)
		last = n
		tokStart = -1
	}
	fail := func(kind Kind, off int, msg string) (*Tree, error) {
		return nil, &SyntaxError{Kind: kind, Offset: off, Notation: s, Msg: msg}
	}

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			flush(i)
		case '[':
			flush(i)
			if last == nil {
				return fail(KindUnresolvableSpan, i, "bracket does not follow a particle")
			}
			if last.Decays {
				return fail(KindUnresolvableSpan, i, "particle "+last.Token+" has more than one decay bracket")
			}
			last.Decays = true
			if depth := len(stack) - 1; depth > t.MaxDepth {
				t.MaxDepth = depth
			}
			stack = append(stack, frame{nodes: &last.Children, open: i})
			last = nil
		case ']':
			if len(stack) == 1 {
				if opts.Strict {
					return fail(KindUnmatchedClosingBracket, i, "no open bracket")
				}
				// 宽松：只记录告警，不切分 token（"eta]pi0" 仍是一个 token）
				t.Warnings = append(t.Warnings, Warning{Kind: KindUnmatchedClosingBracket, Offset: i})
				continue
			}
			flush(i)
			stack = stack[:len(stack)-1]
			// 父层最后一个节点即括号所属粒子
			nodes := *stack[len(stack)-1].nodes
			last = nodes[len(nodes)-1]
		default:
			if tokStart < 0 {
				tokStart = i
			}
		}
	}
	flush(len(s))
	if len(stack) > 1 {
		return fail(KindUnresolvableSpan, stack[len(stack)-1].open, "bracket never closed")
	}
	return t, nil
}

// Format 以规范间距重新输出衰变表达式，例如 "eta' [g rho0 [g pi0 [g g]]]"。
func (t *Tree) Format() string {
	var b strings.Builder
	writeNodes(&b, t.Roots)
	return b.String()
}

func writeNodes(b *strings.Builder, nodes []*Node) {
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(n.Token)
		if n.Decays {
			b.WriteString(" [")
			writeNodes(b, n.Children)
			b.WriteByte(']')
		}
	}
}

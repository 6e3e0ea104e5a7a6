// Package decay 解析嵌套括号形式的衰变表达式，并生成规范化的衰变标识。
//
// 例如 "eta' [g rho0 [g pi0 [g g]]]" 在 level 1 下得到 "etap_grho0_4g"：
// 初态、逐层中间态与末态分别规范化后以 '_' 连接。
// 该变换是有损的：各层粒子多重集相同的表达式得到同一标识。
package decay

import "strings"

// DefaultLevel: 标识中保留的中间态层数；0 表示全部保留。
const DefaultLevel = 1

// Assemble 拼接初态、前 maxDepth 层中间态与末态。
// maxDepth 为 0 时输出全部中间层，为负时不输出中间层。
func Assemble(c Classified, maxDepth int) string {
	var b strings.Builder
	b.WriteString(Canonicalize(c.Initial, DefaultGroup))
	for d := 0; ; d++ {
		if maxDepth != 0 && d >= maxDepth {
			break
		}
		toks, ok := c.Intermediate[d]
		if !ok {
			break
		}
		b.WriteByte('_')
		b.WriteString(Canonicalize(toks, DefaultGroup))
	}
	b.WriteByte('_')
	b.WriteString(Canonicalize(c.Final, DefaultGroup))
	return b.String()
}

// DecayString 解析表达式（宽松模式）并返回衰变标识。
func DecayString(notation string, maxDepth int) (string, error) {
	t, err := Parse(notation)
	if err != nil {
		return "", err
	}
	return Assemble(Classify(t), maxDepth), nil
}

// InitialState 返回括号外的初态粒子。
func InitialState(notation string) ([]string, error) {
	t, err := Parse(notation)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(t.Roots))
	for _, r := range t.Roots {
		out = append(out, r.Token)
	}
	return out, nil
}

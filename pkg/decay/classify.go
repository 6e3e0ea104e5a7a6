package decay

// Classified: 初态、末态与按深度分组的中间态。
// Intermediate[d] 为直接写在深度 d 括号内的全部粒子，0 <= d < MaxDepth；
// 最深一层的粒子只出现在 Final 中。
type Classified struct {
	Initial      []string
	Final        []string
	Intermediate map[int][]string
	MaxDepth     int
	Warnings     []Warning
}

// Classify 对衰变树做一次深度优先遍历。
// Final 的顺序为规范化表达式中自左向右首次出现的顺序。
func Classify(t *Tree) Classified {
	c := Classified{
		Intermediate: make(map[int][]string, t.MaxDepth),
		MaxDepth:     t.MaxDepth,
	}
	if len(t.Warnings) > 0 {
		c.Warnings = append([]Warning(nil), t.Warnings...)
	}
	for d := 0; d < t.MaxDepth; d++ {
		c.Intermediate[d] = []string{}
	}
	for _, root := range t.Roots {
		c.Initial = append(c.Initial, root.Token)
		if len(root.Children) == 0 {
			continue
		}
		st := walk(root.Children, 0, t.MaxDepth)
		c.Final = append(c.Final, st.final...)
		for k, toks := range st.levels {
			if k < t.MaxDepth {
				c.Intermediate[k] = append(c.Intermediate[k], toks...)
			}
		}
	}
	return c
}

// states: 子树的分类结果，levels[k] 对应深度 depth+k。
type states struct {
	final  []string
	levels [][]string
}

func walk(nodes []*Node, depth, maxDepth int) states {
	var out states
	if depth < maxDepth {
		here := make([]string, 0, len(nodes))
		for _, n := range nodes {
			here = append(here, n.Token)
		}
		out.levels = append(out.levels, here)
	} else {
		out.levels = append(out.levels, nil)
	}
	for _, n := range nodes {
		if len(n.Children) == 0 {
			out.final = append(out.final, n.Token)
			continue
		}
		sub := walk(n.Children, depth+1, maxDepth)
		out.final = append(out.final, sub.final...)
		for k, toks := range sub.levels {
			for len(out.levels) <= k+1 {
				out.levels = append(out.levels, nil)
			}
			out.levels[k+1] = append(out.levels[k+1], toks...)
		}
	}
	return out
}

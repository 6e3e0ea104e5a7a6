package decay

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultGroup: 同名粒子数量超过该值时写成 "<count><token>"。
const DefaultGroup = 2

// Group: 排序后相邻相同粒子的计数。
type Group struct {
	Token string
	Count int
}

// Groups 按字节序排序后合并相同粒子；不修改入参。
func Groups(tokens []string) []Group {
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	var out []Group
	for _, tok := range sorted {
		if n := len(out); n > 0 && out[n-1].Token == tok {
			out[n-1].Count++
			continue
		}
		out = append(out, Group{Token: tok, Count: 1})
	}
	return out
}

// Canonicalize 把粒子列表压缩为与顺序无关的标识，例如 [g pi0 g g] -> "3gpi0"。
// 输出中的 eta' 统一写作 etap，便于用作文件名。
func Canonicalize(tokens []string, group int) string {
	var b strings.Builder
	for _, g := range Groups(tokens) {
		if g.Count > group {
			b.WriteString(strconv.Itoa(g.Count))
			b.WriteString(g.Token)
			continue
		}
		for i := 0; i < g.Count; i++ {
			b.WriteString(g.Token)
		}
	}
	return strings.ReplaceAll(b.String(), "eta'", "etap")
}

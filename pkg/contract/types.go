package contract

import "strings"

// Kind: 通道使用的 MC 生成器类别。
type Kind string

const (
	KindPluto    Kind = "pluto"
	KindCocktail Kind = "cocktail"
	KindGun      Kind = "gun"
)

// 通道表达式前缀：以此开头的通道不按 Pluto 反应式解析。
const (
	CocktailPrefix = "Cocktail"
	GunPrefix      = "Gun:"
	// RecoilPrefix: Pluto 反应式开头的反冲质子。
	RecoilPrefix = "p "
)

// Binary 返回该类别默认的生成器可执行文件名。
func (k Kind) Binary() string {
	switch k {
	case KindCocktail:
		return "Ant-cocktail"
	case KindGun:
		return "Ant-mcgun"
	default:
		return "Ant-pluto"
	}
}

// KindOf 依据通道表达式前缀判定类别。
func KindOf(notation string) Kind {
	s := strings.TrimSpace(notation)
	switch {
	case strings.HasPrefix(s, CocktailPrefix):
		return KindCocktail
	case strings.HasPrefix(s, GunPrefix):
		return KindGun
	default:
		return KindPluto
	}
}

// Channel: 一条待模拟的衰变通道。
// Notation 为 Pluto 反应式（含反冲质子，如 "p pi0 [g g]"），或 "Cocktail"/"Gun: g g"。
type Channel struct {
	Notation string
	Files    int
	Events   int
}

// Job: 一个批处理作业（一个输出文件编号）。
// 约束：
// - Seq 在同一 Tag 内自 max+1 起严格递增；
// - Number 为本次提交内的全局序号（1..n），用于作业名 Sim/<n>；
// - 三个文件路径均为绝对路径。
type Job struct {
	Number    int
	Seq       int
	Channel   Channel
	Kind      Kind
	Tag       string
	MCGenFile string
	GeantFile string
	LogFile   string
	// Script: 提交给批处理系统的 shell 命令（生成器; addTID; runGeant）。
	Script string
}

// SplitRecoil 去掉 Pluto 反应式开头的反冲质子 "p "；ok=false 表示缺少质子，原样返回。
func SplitRecoil(notation string) (rest string, ok bool) {
	s := strings.Trim(strings.TrimSpace(notation), `"`)
	if strings.HasPrefix(s, RecoilPrefix) {
		return strings.TrimSpace(s[len(RecoilPrefix):]), true
	}
	return s, false
}

package contract

import "context"

// Seqs: 某一标识已有文件的最大编号（按目录分别统计）。
type Seqs struct {
	MCGen int
	Geant int
}

// Max 返回两者较大值；新作业从 Max()+1 开始编号。
func (s Seqs) Max() int {
	if s.Geant > s.MCGen {
		return s.Geant
	}
	return s.MCGen
}

// Consistent 报告生成器与 Geant 的文件数是否一致。
func (s Seqs) Consistent() bool { return s.MCGen == s.Geant }

// TagCount: 清单中的一行。
type TagCount struct {
	Tag  string
	Seqs Seqs
}

// Scanner: 统计已有模拟文件。
type Scanner interface {
	Scan(ctx context.Context, tag string) (Seqs, error)
	// Inventory 按标识字典序返回全部已有通道。
	Inventory(ctx context.Context) ([]TagCount, error)
}

package contract

// GeneratorOptions: 构造生成器所需的已解析参数（路径均已定位）。
type GeneratorOptions struct {
	// Binary: 生成器可执行文件路径（Ant-pluto/Ant-cocktail/Ant-mcgun）。
	Binary string
	// Emin/Emax: 光子束能量范围（MeV）。
	Emin float64
	Emax float64
	// AddFlags: 原样附加到生成器命令行末尾。
	AddFlags string
	// Level: 衰变标识保留的中间态层数（0 = 全部）。
	Level int

	CocktailSetup   string
	CocktailBinning int

	ThetaMin float64
	ThetaMax float64
	// Opening: 粒子间张角（度）；0 表示不限制。
	Opening float64
}

// Generator: 把通道翻译为文件名标识与 MC 生成命令。
// 实现为纯函数式：不做 I/O，不起并发。
type Generator interface {
	// Tag 返回用于文件名的通道标识（如 "etap_grho0_4g"）。
	Tag(ch Channel) (string, error)
	// Command 返回写出 job.MCGenFile 的生成器命令行。
	Command(job Job) (string, error)
}

// Toolchain: 已定位的外部可执行文件。
type Toolchain struct {
	// Generators: 各类别生成器路径（仅包含本次用到的类别）。
	Generators map[Kind]string
	TID        string // Ant-addTID
	Geant      string // runGeant.sh
	Qsub       string
}

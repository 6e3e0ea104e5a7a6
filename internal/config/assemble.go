package config

import (
	"fmt"
	"io"
	"path/filepath"

	"simblaster/internal/pipeline"
	"simblaster/internal/rate"
	"simblaster/pkg/contract"
	"simblaster/pkg/registry"
	sfs "simblaster/plugins/scanner/filesystem"
	wfs "simblaster/plugins/writer/filesystem"
)

// Dirs: 解析后的绝对目录。
type Dirs struct {
	Output string
	MCGen  string
	Geant  string
	Log    string
}

// ResolveDirs 展开 ~ 并把数据目录解析为输出根目录下的绝对路径。
func ResolveDirs(cfg Config) (Dirs, error) {
	out, err := filepath.Abs(ExpandHome(cfg.OutputPath))
	if err != nil {
		return Dirs{}, fmt.Errorf("output path %q: %w", cfg.OutputPath, contract.ErrPathInvalid)
	}
	sub := func(p string) string {
		p = ExpandHome(p)
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(out, p)
	}
	return Dirs{Output: out, MCGen: sub(cfg.MCGenData), Geant: sub(cfg.GeantData), Log: sub(cfg.LogData)}, nil
}

// AssembleOptions: 装配期参数（不来自配置文件）。
type AssembleOptions struct {
	// DryRun: 使用 dryrun 提交器；Out 非 nil 时打印每条提交命令。
	DryRun bool
	Out    io.Writer
	// User: 邮件通知的用户名（<user>@<qsub.mail_domain>）。
	User string
}

// Assemble 根据配置与已定位的工具链装配流水线组件与运行期设置。
// 生成器只为通道中出现的类别构造；工具链缺项时退回默认可执行文件名。
func Assemble(cfg Config, tc contract.Toolchain, opts AssembleOptions) (pipeline.Components, pipeline.Settings, error) {
	var comp pipeline.Components
	var set pipeline.Settings

	dirs, err := ResolveDirs(cfg)
	if err != nil {
		return comp, set, err
	}
	chs, _ := cfg.ChannelList()

	comp.Generators = make(map[contract.Kind]contract.Generator)
	for _, ch := range chs {
		kind := contract.KindOf(ch.Notation)
		if _, ok := comp.Generators[kind]; ok {
			continue
		}
		f, ok := registry.Generator[kind]
		if !ok {
			return comp, set, fmt.Errorf("unknown generator kind %q: %w", kind, contract.ErrInvalidInput)
		}
		g, err := f(GeneratorOptions(cfg, kind, tc))
		if err != nil {
			return comp, set, fmt.Errorf("generator %s: %w", kind, err)
		}
		comp.Generators[kind] = g
	}

	subName := "qsub"
	if opts.DryRun {
		subName = "dryrun"
	}
	so := contract.SubmitOptions{
		Bin:      orDefault(tc.Qsub, cfg.Qsub.Bin),
		Mail:     cfg.Qsub.Mail,
		User:     opts.User,
		Domain:   cfg.Qsub.MailDomain,
		Queue:    cfg.Qsub.Queue,
		Walltime: cfg.Qsub.Walltime,
		Priority: cfg.Qsub.Priority,
	}
	if comp.Submitter, err = registry.Submitter[subName](registry.SubmitterOptions{Submit: so, Out: opts.Out}); err != nil {
		return comp, set, fmt.Errorf("submitter: %w", err)
	}
	if comp.Scanner, err = registry.Scanner["fs"](sfs.Options{MCGenDir: dirs.MCGen, GeantDir: dirs.Geant}); err != nil {
		return comp, set, fmt.Errorf("scanner: %w", err)
	}
	if comp.Writer, err = registry.Writer["fs"](wfs.Options{OutputDir: dirs.Output}); err != nil {
		return comp, set, fmt.Errorf("writer: %w", err)
	}

	set = pipeline.Settings{
		MCGenDir:    dirs.MCGen,
		GeantDir:    dirs.Geant,
		LogDir:      dirs.Log,
		TID:         orDefault(tc.TID, "Ant-addTID"),
		Geant:       orDefault(tc.Geant, "runGeant.sh"),
		GeantFlags:  cfg.GeantFlags,
		Concurrency: cfg.Concurrency,
		Channels:    chs,
	}
	if cfg.Qsub.PerMinute > 0 && !opts.DryRun {
		set.Gate = rate.NewGate(rate.Limits{PerMinute: cfg.Qsub.PerMinute, Burst: cfg.Qsub.Burst}, nil)
	}
	return comp, set, nil
}

// GeneratorOptions 为指定类别构造生成器参数。
// Pluto 通道使用 generator.name，其余类别使用各自的固定可执行文件名。
func GeneratorOptions(cfg Config, kind contract.Kind, tc contract.Toolchain) contract.GeneratorOptions {
	bin := tc.Generators[kind]
	if bin == "" {
		bin = GeneratorBinary(cfg, kind)
		if cfg.Generator.Path != "" {
			bin = filepath.Join(ExpandHome(cfg.Generator.Path), bin)
		}
	}
	return contract.GeneratorOptions{
		Binary:          bin,
		Emin:            cfg.Generator.Emin,
		Emax:            cfg.Generator.Emax,
		AddFlags:        cfg.Generator.AddFlags,
		Level:           cfg.DecayLevel,
		CocktailSetup:   cfg.Cocktail.Setup,
		CocktailBinning: cfg.Cocktail.Binning,
		ThetaMin:        cfg.Gun.ThetaMin,
		ThetaMax:        cfg.Gun.ThetaMax,
		Opening:         cfg.Gun.Opening,
	}
}

// GeneratorBinary 返回该类别生成器的可执行文件名（不含目录）。
func GeneratorBinary(cfg Config, kind contract.Kind) string {
	if kind == contract.KindPluto && cfg.Generator.Name != "" {
		return cfg.Generator.Name
	}
	return kind.Binary()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

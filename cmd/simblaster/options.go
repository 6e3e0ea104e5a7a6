package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"simblaster/internal/config"
	"simblaster/pkg/contract"
)

// options: 命令行旗标；-1 / 0 / "" 表示未覆盖。
type options struct {
	config        string
	output        string
	verbose       bool
	generatorPath string
	walltime      int
	queue         string
	level         int
	concurrency   int
	force         bool
	dryRun        bool
	metricsFile   string
	status        bool
}

// wordSepNormalize 允许 --dry_run 与 --dry-run 等价。
func wordSepNormalize(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func addSubmitFlags(cmd *cobra.Command, o *options) {
	f := cmd.Flags()
	f.StringVar(&o.generatorPath, "generator-path", "", "生成器与 Ant-addTID 所在目录（覆盖配置）")
	f.IntVar(&o.walltime, "walltime", 0, "作业 walltime（小时，覆盖配置）")
	f.StringVar(&o.queue, "queue", "", "批处理队列（覆盖配置）")
	// level 允许显式设置为 0（全部中间态）；默认 -1 表示未覆盖。
	f.IntVar(&o.level, "level", -1, "衰变标识保留的中间态层数（0 = 全部）")
	f.IntVar(&o.concurrency, "concurrency", 0, "并行提交数（覆盖配置）")
	f.BoolVarP(&o.force, "force", "f", false, "创建缺失的输出目录")
	f.BoolVarP(&o.dryRun, "dry-run", "n", false, "只打印提交命令，不检查工具链也不提交")
	f.StringVar(&o.metricsFile, "metrics-file", "", "结束时写出 Prometheus 文本格式指标")
	f.BoolVar(&o.status, "status", true, "终端进度提示（stderr）")
}

// overlay 把命令行旗标转换为配置覆盖层。
func (o *options) overlay() config.Config {
	over := config.Overlay()
	over.OutputPath = o.output
	over.Generator.Path = o.generatorPath
	if o.walltime > 0 {
		over.Qsub.Walltime = config.WalltimeHours(o.walltime)
	}
	over.Qsub.Queue = o.queue
	if o.level >= 0 {
		over.DecayLevel = o.level
	}
	over.Concurrency = o.concurrency
	over.MetricsFile = o.metricsFile
	return over
}

// loadConfig 按 默认 < 文件 < ENV < CLI 合并并校验配置；返回所用配置来源（可能为空）。
func loadConfig(o *options) (config.Config, string, error) {
	cfg := config.Defaults()
	src, err := config.Find(o.config, os.Getenv)
	if err != nil {
		return cfg, "", fmt.Errorf("%w: %w", contract.ErrInvalidInput, err)
	}
	if raw := os.Getenv(config.EnvConfigYAML); raw != "" {
		src = "$" + config.EnvConfigYAML
		cfg, err = config.Load(cfg, "", []byte(raw))
	} else if src != "" {
		cfg, err = config.Load(cfg, src, nil)
	}
	if err != nil {
		return cfg, src, fmt.Errorf("load %s: %w: %w", src, contract.ErrInvalidInput, err)
	}
	env, err := config.EnvOverlay(os.Environ())
	if err != nil {
		return cfg, src, fmt.Errorf("%w: %w", contract.ErrInvalidInput, err)
	}
	cfg = config.Merge(config.Merge(cfg, env), o.overlay())
	if err := config.Validate(cfg); err != nil {
		return cfg, src, err
	}
	if err := config.ValidateChannels(cfg); err != nil {
		return cfg, src, err
	}
	return cfg, src, nil
}

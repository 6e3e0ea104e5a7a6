package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"simblaster/internal/config"
	"simblaster/internal/diag"
	"simblaster/internal/pipeline"
	"simblaster/internal/preflight"
	"simblaster/pkg/contract"
)

// runSubmit: 配置 → 预检 → 装配 → 规划 → 总览 → 提交。
func runSubmit(ctx context.Context, o *options, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	start := time.Now()
	cfg, src, err := loadConfig(o)
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if o.verbose {
		level = "debug"
	}
	logger := diag.NewLogger(uuid.NewString(), level, config.ExpandHome(cfg.Logging.Dir))
	defer func() { _ = logger.Close() }()
	defer func() {
		if err != nil {
			code := diag.Classify(err)
			logger.Error("cli", string(code), "first error: "+err.Error(), &start)
			diag.IncOp("cli", "error", "error")
			if code != diag.CodeUnknown {
				diag.IncError("cli", string(code))
			}
		}
		if cfg.MetricsFile != "" {
			if merr := diag.Metrics().WriteTextfile(config.ExpandHome(cfg.MetricsFile)); merr != nil {
				fprintf(stderr, "提示：指标写出失败：%v\n", merr)
			}
		}
	}()

	term := diag.NewTerminal(stderr, o.status)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)
	if src != "" {
		term.Println("使用配置 %s", src)
	} else {
		term.Println("未找到配置文件，使用默认值")
	}
	logger.DebugStart("config", "effective", "", "", map[string]string{
		"output":      cfg.OutputPath,
		"generator":   cfg.Generator.Name,
		"queue":       cfg.Qsub.Queue,
		"walltime":    cfg.Qsub.Walltime,
		"decay_level": fmt.Sprint(cfg.DecayLevel),
		"concurrency": fmt.Sprint(cfg.Concurrency),
		"dry_run":     fmt.Sprint(o.dryRun),
	})

	chs, skipped := cfg.ChannelList()
	for _, s := range skipped {
		term.Println("跳过通道 %s", s)
	}
	if len(chs) == 0 {
		fprintf(stderr, "[warn] No channels specified in the config file (see 'simblaster init-config')\n")
		for _, ch := range newDialogue(stdin, stderr).channels() {
			cfg.Channels = append(cfg.Channels, config.ChannelEntry{Notation: ch.Notation, Files: ch.Files, Events: ch.Events})
		}
		chs, _ = cfg.ChannelList()
	}
	if len(chs) == 0 {
		return fmt.Errorf("no channels to simulate (see 'simblaster init-config' for an example): %w", contract.ErrInvalidInput)
	}

	rep, err := preflight.Run(cfg, kindsOf(chs), preflight.Options{Force: o.force, DryRun: o.dryRun, LookPath: lookPath}, logger)
	if err != nil {
		return err
	}
	for _, w := range rep.Warnings {
		term.Println("[warn] %s", w)
	}

	var echo io.Writer
	if o.dryRun {
		echo = stdout
	}
	comp, set, err := config.Assemble(cfg, rep.Toolchain, config.AssembleOptions{DryRun: o.dryRun, Out: echo, User: currentUser()})
	if err != nil {
		return err
	}
	sched, err := pipeline.Plan(ctx, comp, set, logger)
	if err != nil {
		return err
	}
	fprintf(stdout, "%d channels configured. The following simulation will take place:\n", len(sched.Channels))
	for _, cp := range sched.Channels {
		fprintf(stdout, "%s\n", pipeline.SummaryLine(cp))
	}
	fprintf(stdout, " Total %s events in %d files\n", pipeline.UnitPrefix(sched.Events()), sched.Files())
	fprintf(stdout, " Files will be stored in %s\n", rep.Dirs.Output)

	timer := logger.Start("pipeline", "submit")
	if err := pipelineSubmit(ctx, comp, set, sched, logger); err != nil {
		return err
	}
	timer.Finish("submit", int64(sched.Files()))
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	return nil
}

// kindsOf 返回通道中出现的生成器类别（按首次出现顺序）。
func kindsOf(chs []contract.Channel) []contract.Kind {
	var out []contract.Kind
	seen := make(map[contract.Kind]bool)
	for _, ch := range chs {
		k := contract.KindOf(ch.Notation)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

package testdata

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "simblaster/internal/config"
	"simblaster/internal/diag"
	"simblaster/internal/pipeline"
	"simblaster/pkg/contract"
	"simblaster/plugins/generator/cocktail"
	"simblaster/plugins/submitter/dryrun"
)

// loadBasic 读取 basic.yaml 并把全部数据目录重定向到临时目录。
func loadBasic(t *testing.T, root string) cfgpkg.Config {
	t.Helper()
	cfg, err := cfgpkg.Load(cfgpkg.Defaults(), filepath.Join("config", "basic.yaml"), nil)
	require.NoError(t, err)
	over := cfgpkg.Overlay()
	over.OutputPath = root
	over.GeantData = "geant"
	over.DecayLevel = 1
	cfg = cfgpkg.Merge(cfg, over)
	require.NoError(t, cfgpkg.Validate(cfg))
	require.NoError(t, cfgpkg.ValidateChannels(cfg))
	for _, d := range []string{"mcgen", "geant", "log"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	return cfg
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

// TestE2EDryRun 配置 → 装配 → 规划（续接已有编号）→ dry-run 提交 → 提交日志。
func TestE2EDryRun(t *testing.T) {
	root := t.TempDir()
	cfg := loadBasic(t, root)
	touch(t, filepath.Join(root, "mcgen", "pluto_etap_grho0_4g_0003.root"))
	touch(t, filepath.Join(root, "geant", "g4sim_etap_grho0_4g_0002.root"))

	var echo bytes.Buffer
	comp, set, err := cfgpkg.Assemble(cfg, contract.Toolchain{}, cfgpkg.AssembleOptions{DryRun: true, Out: &echo, User: "ae"})
	require.NoError(t, err)
	set.Now = func() time.Time { return time.Date(2024, 3, 1, 8, 15, 0, 0, time.UTC) }

	sched, err := pipeline.Run(context.Background(), comp, set, diag.Nop())
	require.NoError(t, err)
	require.Len(t, sched.Channels, 3)
	assert.Equal(t, "etap_grho0_4g", sched.Channels[0].Tag)
	assert.Equal(t, 4, sched.Channels[0].First)
	assert.Equal(t, 13, sched.Channels[0].Last)
	assert.Equal(t, "pi0_gg", sched.Channels[1].Tag)
	assert.Equal(t, 1, sched.Channels[1].First)
	assert.Equal(t, cocktail.Tag, sched.Channels[2].Tag)
	assert.Equal(t, 115, sched.Files())
	assert.Equal(t, 10*100000+5*50000+100*10000, sched.Events())

	jobs := comp.Submitter.(*dryrun.DryRun).Jobs()
	assert.Len(t, jobs, 115)
	assert.Equal(t, 115, strings.Count(echo.String(), "| qsub -m ae -M ae@"))
	assert.Contains(t, echo.String(), "walltime=24:00:00")
	assert.Contains(t, echo.String(), filepath.Join(root, "mcgen", "pluto_etap_grho0_4g_0004.root"))
	assert.Contains(t, echo.String(), "Ant-addTID")

	log, err := os.ReadFile(filepath.Join(root, "submit_2024-03-01_08.15.log"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(log), "Submitting 115 jobs on 2024-03-01 08:15:00\n\n"))
	assert.Contains(t, string(log), " Total 2.25M events in 115 files\n")
	assert.NotContains(t, string(log), "Submitted ")
	assert.Contains(t, string(log), "Used qsub command: qsub ")
}

// TestE2ESecondRun 第二次运行从上一次写出的编号之后继续。
func TestE2ESecondRun(t *testing.T) {
	root := t.TempDir()
	cfg := loadBasic(t, root)
	cfg.Channels = cfg.Channels[1:2]

	comp, set, err := cfgpkg.Assemble(cfg, contract.Toolchain{}, cfgpkg.AssembleOptions{DryRun: true, User: "ae"})
	require.NoError(t, err)
	sched, err := pipeline.Plan(context.Background(), comp, set, diag.Nop())
	require.NoError(t, err)
	require.Len(t, sched.Jobs, 5)

	// 模拟作业完成：生成器与 Geant 文件均已写出
	for _, j := range sched.Jobs {
		touch(t, j.MCGenFile)
		touch(t, j.GeantFile)
	}
	sched, err = pipeline.Plan(context.Background(), comp, set, diag.Nop())
	require.NoError(t, err)
	assert.Equal(t, 6, sched.Channels[0].First)
	assert.Equal(t, 10, sched.Channels[0].Last)
	assert.True(t, sched.Channels[0].Existing.Consistent())
}

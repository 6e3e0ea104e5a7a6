package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simblaster/pkg/contract"
	"simblaster/plugins/submitter/dryrun"
)

// UT-CFG-01: 解析完整 sim_settings.yaml，未出现的键保留默认值
func TestLoadYAML(t *testing.T) {
	cfg, err := Load(Defaults(), "../../testdata/config/basic.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, "/data/sim", cfg.OutputPath)
	assert.Equal(t, "qsub", cfg.Qsub.Bin)
	assert.Equal(t, "kph.uni-mainz.de", cfg.Qsub.MailDomain)
	assert.Equal(t, "ae", cfg.Qsub.Mail)
	assert.Equal(t, 10, cfg.Qsub.Priority)
	assert.Equal(t, "Ant-pluto", cfg.Generator.Name)
	assert.Equal(t, 1600.0, cfg.Generator.Emax)
	assert.Equal(t, 2, cfg.DecayLevel)
	require.Len(t, cfg.Channels, 4)
	assert.Equal(t, ChannelEntry{Notation: "p pi0 [g g]", Files: 5, Events: 50000}, cfg.Channels[1])
	assert.Equal(t, ChannelEntry{Notation: "Cocktail", Files: 100, Events: 10000}, cfg.Channels[2])
	require.NoError(t, Validate(cfg))
	require.NoError(t, ValidateChannels(cfg))

	chs, skipped := cfg.ChannelList()
	assert.Len(t, chs, 3)
	assert.Equal(t, []string{"Gun: g g"}, skipped)
}

// UT-CFG-02: ENV 覆盖部分字段
func TestEnvOverlay(t *testing.T) {
	env := []string{
		"SIMBLASTER_QSUB_QUEUE=long",
		"SIMBLASTER_DECAY_LEVEL=0",
		"SIMBLASTER_CONCURRENCY=3",
		"SIMBLASTER_GENERATOR_EMIN=1500.5",
		"SIMBLASTER_UNKNOWN=x",
		"HOME=/root",
	}
	over, err := EnvOverlay(env)
	require.NoError(t, err)
	assert.Equal(t, "long", over.Qsub.Queue)
	assert.Equal(t, 0, over.DecayLevel)
	assert.Equal(t, 3, over.Concurrency)
	assert.Equal(t, 1500.5, over.Generator.Emin)

	merged := Merge(Defaults(), over)
	assert.Equal(t, "long", merged.Qsub.Queue)
	assert.Equal(t, 0, merged.DecayLevel)
	assert.Equal(t, "12:00:00", merged.Qsub.Walltime)

	_, err = EnvOverlay([]string{"SIMBLASTER_CONCURRENCY=many"})
	assert.Error(t, err)
}

// UT-CFG-03: 含非法字段
func TestLoadUnknown(t *testing.T) {
	_, err := Load(Defaults(), "", []byte("unknown: 1\n"))
	assert.Error(t, err)

	_, err = Load(Defaults(), "", []byte("channels:\n  - notation: a\n    file: 1\n"))
	assert.ErrorIs(t, err, contract.ErrChannelInvalid)

	_, err = Load(Defaults(), "", []byte("channels:\n  - 'p pi0 [g g] ten 10'\n"))
	assert.ErrorIs(t, err, contract.ErrChannelInvalid)

	_, err = Load(Defaults(), "", nil)
	assert.Error(t, err)
}

// UT-CFG-04: 优先级 默认 < 文件 < ENV < CLI；未设置的覆盖层不改变结果
func TestMergePrecedence(t *testing.T) {
	file, err := Load(Defaults(), "", []byte("qsub:\n  queue: file\ndecay_level: 3\n"))
	require.NoError(t, err)
	env := Overlay()
	env.Qsub.Queue = "env"
	cli := Overlay()
	cli.Qsub.Walltime = WalltimeHours(6)

	cfg := Merge(Merge(file, env), cli)
	assert.Equal(t, "env", cfg.Qsub.Queue)
	assert.Equal(t, "06:00:00", cfg.Qsub.Walltime)
	assert.Equal(t, 3, cfg.DecayLevel)
	assert.Equal(t, file, Merge(file, Overlay()))
}

// UT-CFG-05: 校验规则
func TestValidate(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
	require.NoError(t, Validate(DefaultTemplateConfig()))

	cases := map[string]func(*Config){
		"walltime":    func(c *Config) { c.Qsub.Walltime = "12h" },
		"mail":        func(c *Config) { c.Qsub.Mail = "x" },
		"energy":      func(c *Config) { c.Generator.Emax = 1000 },
		"concurrency": func(c *Config) { c.Concurrency = 0 },
		"level":       func(c *Config) { c.DecayLevel = -2 },
		"log level":   func(c *Config) { c.Logging.Level = "trace" },
		"cocktail": func(c *Config) {
			c.Channels = []ChannelEntry{{Notation: "Cocktail", Files: 1, Events: 1}}
		},
		"cocktail both": func(c *Config) {
			c.Cocktail = Cocktail{Setup: "S", Binning: 3}
			c.Channels = []ChannelEntry{{Notation: "Cocktail", Files: 1, Events: 1}}
		},
		"gun theta": func(c *Config) {
			c.Gun = Gun{ThetaMin: 90, ThetaMax: 90}
			c.Channels = []ChannelEntry{{Notation: "Gun: g", Files: 1, Events: 1}}
		},
	}
	for name, mutate := range cases {
		cfg := Defaults()
		mutate(&cfg)
		assert.ErrorIs(t, Validate(cfg), contract.ErrInvalidInput, name)
	}

	cfg := Defaults()
	cfg.Channels = []ChannelEntry{{Notation: "p pi0 [g g", Files: 1, Events: 1}}
	assert.ErrorIs(t, ValidateChannels(cfg), contract.ErrChannelInvalid)
	cfg.Channels[0].Files = 0
	assert.NoError(t, ValidateChannels(cfg))
}

// UT-CFG-06: 单行旧格式
func TestParseChannelLine(t *testing.T) {
	e, err := ParseChannelLine(`;"p omega [pi0 [g g] g]" 10 100000`)
	require.NoError(t, err)
	assert.Equal(t, ChannelEntry{Notation: "p omega [pi0 [g g] g]", Files: 10, Events: 100000}, e)

	for _, bad := range []string{"", "p 10", `"a" -1 10`, `"" 1 1`} {
		_, err := ParseChannelLine(bad)
		assert.ErrorIs(t, err, contract.ErrChannelInvalid, bad)
	}
}

// UT-CFG-07: 模板可被重新加载且通过校验
func TestTemplateRoundTrip(t *testing.T) {
	raw, err := Template(DefaultTemplateConfig())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# HH:MM:SS")
	cfg, err := Load(Defaults(), "", raw)
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplateConfig(), cfg)
	require.NoError(t, Validate(cfg))
}

// UT-CFG-08: 查找顺序
func TestFind(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(p, []byte("{}"), 0o644))
	env := func(k string) string {
		if k == EnvConfigFile {
			return p
		}
		return ""
	}
	got, err := Find("", env)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = Find(filepath.Join(dir, "missing.yaml"), env)
	assert.Error(t, err)
}

// UT-CFG-09: 装配组件；目录相对输出根解析
func TestAssemble(t *testing.T) {
	cfg, err := Load(Defaults(), "../../testdata/config/basic.yaml", nil)
	require.NoError(t, err)
	cfg.OutputPath = t.TempDir()
	var out bytes.Buffer
	comp, set, err := Assemble(cfg, contract.Toolchain{TID: "/opt/ant/bin/Ant-addTID"}, AssembleOptions{DryRun: true, Out: &out, User: "alice"})
	require.NoError(t, err)

	assert.Len(t, comp.Generators, 2)
	assert.Contains(t, comp.Generators, contract.KindPluto)
	assert.Contains(t, comp.Generators, contract.KindCocktail)
	assert.IsType(t, &dryrun.DryRun{}, comp.Submitter)
	assert.Equal(t, filepath.Join(cfg.OutputPath, "mcgen"), set.MCGenDir)
	assert.Equal(t, "/scratch/geant", set.GeantDir)
	assert.Equal(t, "/opt/ant/bin/Ant-addTID", set.TID)
	assert.Equal(t, "runGeant.sh", set.Geant)
	assert.Equal(t, 4, set.Concurrency)
	assert.Len(t, set.Channels, 3)

	argv := comp.Submitter.Argv(contract.Job{Number: 1, LogFile: "/l"})
	assert.Contains(t, argv, "alice@kph.uni-mainz.de")
	assert.Contains(t, argv, "ncpus=1,walltime=24:00:00")

	opts := GeneratorOptions(cfg, contract.KindGun, contract.Toolchain{})
	assert.Equal(t, "/opt/ant/bin/Ant-mcgun", opts.Binary)
	assert.Equal(t, 20.0, opts.ThetaMin)
	assert.Equal(t, 2, opts.Level)
	assert.Nil(t, set.Gate)

	// 限速只对真实提交生效
	cfg.Qsub.PerMinute = 30
	_, set, err = Assemble(cfg, contract.Toolchain{}, AssembleOptions{DryRun: true})
	require.NoError(t, err)
	assert.Nil(t, set.Gate)
	_, set, err = Assemble(cfg, contract.Toolchain{}, AssembleOptions{User: "alice"})
	require.NoError(t, err)
	require.NotNil(t, set.Gate)
	assert.Equal(t, 30, set.Gate.Available())
}

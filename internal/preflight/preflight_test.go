package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simblaster/internal/config"
	"simblaster/internal/diag"
	"simblaster/pkg/contract"
)

func writeExec(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755))
	return p
}

// fakePath: 仅认识给定名称的 LookPath。
func fakePath(known map[string]string) func(string) (string, error) {
	return func(name string) (string, error) {
		if p, ok := known[name]; ok {
			return p, nil
		}
		return "", errors.New("not found")
	}
}

// setup 构造完整的 Ant 与 a2geant 目录。
func setup(t *testing.T, targetLength string) (config.Config, func(string) (string, error)) {
	t.Helper()
	root := t.TempDir()
	ant := filepath.Join(root, "ant")
	a2 := filepath.Join(root, "a2geant")
	require.NoError(t, os.MkdirAll(ant, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(a2, "macros"), 0o755))
	for _, n := range []string{"Ant-pluto", "Ant-cocktail", "Ant-addTID"} {
		writeExec(t, ant, n)
	}
	writeExec(t, a2, "A2")
	writeExec(t, a2, "runGeant.sh")
	if targetLength != "" {
		mac := "/A2/det/useTarget Cryo\n/A2/det/setTargetLength " + targetLength + " cm\n"
		require.NoError(t, os.WriteFile(filepath.Join(a2, "macros", "DetectorSetup.mac"), []byte(mac), 0o644))
	}
	cfg := config.Defaults()
	cfg.OutputPath = filepath.Join(root, "out")
	cfg.Generator.Path = ant
	cfg.A2GeantPath = a2
	return cfg, fakePath(map[string]string{"qsub": "/usr/bin/qsub"})
}

// TestCheckDir 缺失目录在 force 下创建；普通文件被拒绝。
func TestCheckDir(t *testing.T) {
	root := t.TempDir()
	missing := filepath.Join(root, "a", "b")
	assert.ErrorIs(t, CheckDir(missing, false), contract.ErrPathInvalid)
	require.NoError(t, CheckDir(missing, true))
	assert.DirExists(t, missing)
	require.NoError(t, CheckDir(missing, false))

	file := filepath.Join(root, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.ErrorIs(t, CheckDir(file, true), contract.ErrPathInvalid)
}

// TestRunComplete 目录创建与工具链定位。
func TestRunComplete(t *testing.T) {
	cfg, lp := setup(t, "10.0")
	rep, err := Run(cfg, []contract.Kind{contract.KindPluto, contract.KindCocktail}, Options{Force: true, LookPath: lp}, diag.Nop())
	require.NoError(t, err)
	assert.Empty(t, rep.Warnings)
	assert.DirExists(t, rep.Dirs.MCGen)
	assert.DirExists(t, rep.Dirs.Log)
	assert.Equal(t, "/usr/bin/qsub", rep.Toolchain.Qsub)
	assert.Equal(t, filepath.Join(cfg.Generator.Path, "Ant-pluto"), rep.Toolchain.Generators[contract.KindPluto])
	assert.Equal(t, filepath.Join(cfg.Generator.Path, "Ant-cocktail"), rep.Toolchain.Generators[contract.KindCocktail])
	assert.Equal(t, filepath.Join(cfg.A2GeantPath, "runGeant.sh"), rep.Toolchain.Geant)
	assert.Equal(t, filepath.Join(cfg.Generator.Path, "Ant-addTID"), rep.Toolchain.TID)
}

// TestRunMissing 缺少目录或可执行文件。
func TestRunMissing(t *testing.T) {
	cfg, lp := setup(t, "10")
	_, err := Run(cfg, []contract.Kind{contract.KindPluto}, Options{LookPath: lp}, diag.Nop())
	assert.ErrorIs(t, err, contract.ErrPathInvalid)

	_, err = Run(cfg, []contract.Kind{contract.KindGun}, Options{Force: true, LookPath: lp}, diag.Nop())
	assert.ErrorIs(t, err, contract.ErrBinaryMissing)

	_, err = Run(cfg, nil, Options{Force: true, LookPath: fakePath(nil)}, diag.Nop())
	assert.ErrorIs(t, err, contract.ErrBinaryMissing)

	require.NoError(t, os.Chmod(filepath.Join(cfg.A2GeantPath, "A2"), 0o644))
	_, err = Run(cfg, nil, Options{Force: true, LookPath: lp}, diag.Nop())
	assert.ErrorIs(t, err, contract.ErrBinaryMissing)
}

// TestRunDryRun 跳过工具链检查。
func TestRunDryRun(t *testing.T) {
	cfg, _ := setup(t, "")
	rep, err := Run(cfg, []contract.Kind{contract.KindGun}, Options{Force: true, DryRun: true, LookPath: fakePath(nil)}, diag.Nop())
	require.NoError(t, err)
	assert.Empty(t, rep.Toolchain.Qsub)
}

// TestGeantInstall pluto2mkin 报错；靶长过短或缺少宏文件告警。
func TestGeantInstall(t *testing.T) {
	cfg, lp := setup(t, "3")
	_, warns, err := Toolchain(cfg, nil, lp)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "target length 3 cm")

	cfg, lp = setup(t, "")
	_, warns, err = Toolchain(cfg, nil, lp)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "no DetectorSetup.mac")

	writeExec(t, cfg.A2GeantPath, "pluto2mkin")
	_, _, err = Toolchain(cfg, nil, lp)
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
}

// TestGeantFromPath a2_geant_path 为空时从 $PATH 定位并以其目录检查宏文件。
func TestGeantFromPath(t *testing.T) {
	cfg, _ := setup(t, "2.5")
	a2 := cfg.A2GeantPath
	cfg.A2GeantPath = ""
	lp := fakePath(map[string]string{
		"qsub":        "/usr/bin/qsub",
		"A2":          filepath.Join(a2, "A2"),
		"runGeant.sh": filepath.Join(a2, "runGeant.sh"),
	})
	tc, warns, err := Toolchain(cfg, nil, lp)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(a2, "runGeant.sh"), tc.Geant)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "2.5 cm")
}

// TestTargetLength 取最后一条设置，忽略注释。
func TestTargetLength(t *testing.T) {
	v, ok, err := TargetLength(strings.NewReader("# /A2/det/setTargetLength 1 cm\n/A2/det/setTargetLength 5 cm\n/A2/det/setTargetLength 10.5 cm\n"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10.5, v)

	_, ok, err = TargetLength(strings.NewReader("/A2/det/useTarget Cryo\n"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = TargetLength(strings.NewReader("/A2/det/setTargetLength five cm\n"))
	assert.Error(t, err)
}

// Package preflight 在提交前检查目录与外部工具链，并定位各可执行文件。
package preflight

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"simblaster/internal/config"
	"simblaster/internal/diag"
	"simblaster/pkg/contract"
)

// MinTargetLength: DetectorSetup.mac 中靶长低于该值（cm）时告警。
const MinTargetLength = 10.0

// Options: 检查行为开关。
type Options struct {
	// Force: 目录不存在时创建。
	Force bool
	// DryRun: 跳过可执行文件检查，工具链退回默认名称。
	DryRun bool
	// LookPath: 在 $PATH 中查找可执行文件；nil 时使用 exec.LookPath。
	LookPath func(string) (string, error)
}

// Report: 检查结果。
type Report struct {
	Dirs      config.Dirs
	Toolchain contract.Toolchain
	// Warnings: 不阻断提交的问题（例如靶长过短）。
	Warnings []string
}

// Run 依次检查目录与工具链；kinds 为本次用到的生成器类别。
func Run(cfg config.Config, kinds []contract.Kind, opts Options, logger *diag.Logger) (Report, error) {
	var rep Report
	timer := logger.Start("preflight", "check")
	dirs, err := config.ResolveDirs(cfg)
	if err != nil {
		return rep, err
	}
	rep.Dirs = dirs
	for _, d := range []string{dirs.Output, dirs.Log, dirs.MCGen, dirs.Geant} {
		if err := CheckDir(d, opts.Force); err != nil {
			logger.Error("preflight", string(diag.Classify(err)), err.Error(), timer.Since())
			return rep, err
		}
	}
	if opts.DryRun {
		timer.Finish("dirs only (dry-run)", 0)
		return rep, nil
	}
	tc, warns, err := Toolchain(cfg, kinds, opts.LookPath)
	if err != nil {
		logger.Error("preflight", string(diag.Classify(err)), err.Error(), timer.Since())
		return rep, err
	}
	for _, w := range warns {
		logger.Warn("preflight", w, "", nil)
	}
	rep.Toolchain = tc
	rep.Warnings = warns
	timer.Finish("check", int64(len(warns)))
	return rep, nil
}

// CheckDir 要求 path 为可读写目录；force=true 时创建缺失目录。
func CheckDir(path string, force bool) error {
	st, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && force:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
		return nil
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("directory %s does not exist (use --force to create it): %w", path, contract.ErrPathInvalid)
	case err != nil:
		return fmt.Errorf("directory %s: %w", path, err)
	case !st.IsDir():
		return fmt.Errorf("%s is not a directory: %w", path, contract.ErrPathInvalid)
	}
	if err := accessible(path); err != nil {
		return fmt.Errorf("directory %s is not readable and writable: %w: %w", path, contract.ErrPathInvalid, err)
	}
	return nil
}

// Toolchain 定位 qsub、各类别生成器、Ant-addTID、A2 与 runGeant.sh，并检查 a2geant 安装。
func Toolchain(cfg config.Config, kinds []contract.Kind, lookPath func(string) (string, error)) (contract.Toolchain, []string, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var tc contract.Toolchain
	var err error
	if tc.Qsub, err = findBin("", cfg.Qsub.Bin, lookPath); err != nil {
		return tc, nil, err
	}
	genDir := config.ExpandHome(cfg.Generator.Path)
	tc.Generators = make(map[contract.Kind]string, len(kinds))
	for _, k := range kinds {
		if tc.Generators[k], err = findBin(genDir, config.GeneratorBinary(cfg, k), lookPath); err != nil {
			return tc, nil, err
		}
	}
	if tc.TID, err = findBin(genDir, "Ant-addTID", lookPath); err != nil {
		return tc, nil, err
	}

	geantDir := config.ExpandHome(cfg.A2GeantPath)
	if _, err = findBin(geantDir, "A2", lookPath); err != nil {
		return tc, nil, err
	}
	if tc.Geant, err = findBin(geantDir, "runGeant.sh", lookPath); err != nil {
		return tc, nil, err
	}
	if geantDir == "" {
		geantDir = filepath.Dir(tc.Geant)
	}
	// 能直接读取 Pluto 文件的 a2geant 不再附带 pluto2mkin
	if _, err := os.Stat(filepath.Join(geantDir, "pluto2mkin")); err == nil {
		return tc, nil, fmt.Errorf("pluto2mkin converter found in %s, use the PlutoGen branch of a2geant: %w", geantDir, contract.ErrInvalidInput)
	}
	var warns []string
	mac := filepath.Join(geantDir, "macros", "DetectorSetup.mac")
	f, err := os.Open(mac)
	if err != nil {
		warns = append(warns, fmt.Sprintf("no DetectorSetup.mac found in %s", filepath.Dir(mac)))
		return tc, warns, nil
	}
	defer f.Close()
	length, ok, err := TargetLength(f)
	switch {
	case err != nil:
		warns = append(warns, fmt.Sprintf("read %s: %v", mac, err))
	case !ok:
		warns = append(warns, fmt.Sprintf("no target length set in %s", mac))
	case length < MinTargetLength:
		warns = append(warns, fmt.Sprintf("target length %s cm in %s is smaller than the usual lH2 target; check it when using a smeared z vertex",
			strconv.FormatFloat(length, 'f', -1, 64), mac))
	}
	return tc, warns, nil
}

// TargetLength 返回宏文件中最后一条 /A2/det/setTargetLength 的数值（cm）。
func TargetLength(r io.Reader) (float64, bool, error) {
	var (
		val   float64
		found bool
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") || !strings.Contains(line, "/A2/det/setTargetLength") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, false, fmt.Errorf("target length %q: %w", fields[1], err)
		}
		val, found = v, true
	}
	return val, found, sc.Err()
}

// findBin: dir 非空时要求 dir/name 为可执行文件，否则在 $PATH 中查找。
func findBin(dir, name string, lookPath func(string) (string, error)) (string, error) {
	if dir == "" {
		p, err := lookPath(name)
		if err != nil {
			return "", fmt.Errorf("%s not found in $PATH: %w", name, contract.ErrBinaryMissing)
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		return p, nil
	}
	p := filepath.Join(dir, name)
	st, err := os.Stat(p)
	if err != nil {
		return "", fmt.Errorf("%s does not exist: %w", p, contract.ErrBinaryMissing)
	}
	if !st.Mode().IsRegular() || st.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%s is not executable: %w", p, contract.ErrBinaryMissing)
	}
	return p, nil
}

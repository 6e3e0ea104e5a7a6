// Package gun 为 "Gun: <particles>" 通道生成 Ant-mcgun 命令。
package gun

import (
	"fmt"
	"strconv"
	"strings"

	"simblaster/internal/shell"
	"simblaster/pkg/contract"
	"simblaster/pkg/decay"
)

// TagPrefix: 粒子枪标识前缀，后接规范化的粒子列表。
const TagPrefix = "gun_"

type Gun struct {
	opts contract.GeneratorOptions
}

// New 创建粒子枪生成器；要求 0 <= ThetaMin < ThetaMax <= 180。
func New(opts contract.GeneratorOptions) (*Gun, error) {
	if strings.TrimSpace(opts.Binary) == "" {
		return nil, fmt.Errorf("gun: binary not set: %w", contract.ErrInvalidInput)
	}
	if opts.ThetaMin < 0 || opts.ThetaMax > 180 || opts.ThetaMin >= opts.ThetaMax {
		return nil, fmt.Errorf("gun: theta range [%g,%g] invalid: %w", opts.ThetaMin, opts.ThetaMax, contract.ErrInvalidInput)
	}
	if opts.Opening < 0 {
		return nil, fmt.Errorf("gun: opening angle %g invalid: %w", opts.Opening, contract.ErrInvalidInput)
	}
	return &Gun{opts: opts}, nil
}

var _ contract.Generator = (*Gun)(nil)

// Particles 解析 "Gun: g g" 中的粒子列表。
func Particles(notation string) ([]string, error) {
	s := strings.Trim(strings.TrimSpace(notation), `"`)
	if !strings.HasPrefix(s, contract.GunPrefix) {
		return nil, fmt.Errorf("gun: channel %q lacks %q: %w", notation, contract.GunPrefix, contract.ErrChannelInvalid)
	}
	ps := strings.Fields(strings.TrimPrefix(s, contract.GunPrefix))
	if len(ps) == 0 {
		return nil, fmt.Errorf("gun: channel %q has no particles: %w", notation, contract.ErrChannelInvalid)
	}
	return ps, nil
}

func (g *Gun) Tag(ch contract.Channel) (string, error) {
	ps, err := Particles(ch.Notation)
	if err != nil {
		return "", err
	}
	return TagPrefix + decay.Canonicalize(ps, decay.DefaultGroup), nil
}

// Command: <Ant-mcgun> -p <p>... --theta-min <f> --theta-max <f> [--OpeningAngle <f>] -n <events> -o <file> --Emin <f> --Emax <f> <add_flags>
func (g *Gun) Command(job contract.Job) (string, error) {
	if job.MCGenFile == "" || job.Channel.Events <= 0 {
		return "", fmt.Errorf("gun: job %d: %w", job.Number, contract.ErrInvalidInput)
	}
	ps, err := Particles(job.Channel.Notation)
	if err != nil {
		return "", err
	}
	argv := []string{g.opts.Binary}
	for _, p := range ps {
		argv = append(argv, "-p", p)
	}
	argv = append(argv,
		"--theta-min", strconv.FormatFloat(g.opts.ThetaMin, 'f', -1, 64),
		"--theta-max", strconv.FormatFloat(g.opts.ThetaMax, 'f', -1, 64),
	)
	if g.opts.Opening > 0 {
		argv = append(argv, "--OpeningAngle", strconv.FormatFloat(g.opts.Opening, 'f', -1, 64))
	}
	argv = append(argv,
		"-n", strconv.Itoa(job.Channel.Events),
		"-o", job.MCGenFile,
		"--Emin", strconv.FormatFloat(g.opts.Emin, 'f', -1, 64),
		"--Emax", strconv.FormatFloat(g.opts.Emax, 'f', -1, 64),
	)
	cmd := shell.Join(argv)
	if f := strings.TrimSpace(g.opts.AddFlags); f != "" {
		cmd += " " + f
	}
	return cmd, nil
}

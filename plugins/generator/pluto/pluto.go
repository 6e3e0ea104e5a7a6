// Package pluto 为 Pluto 反应式通道生成 Ant-pluto 命令。
package pluto

import (
	"fmt"
	"strconv"
	"strings"

	"simblaster/internal/shell"
	"simblaster/pkg/contract"
	"simblaster/pkg/decay"
)

type Pluto struct {
	opts contract.GeneratorOptions
}

// New 创建 Pluto 生成器；Binary 必填。
func New(opts contract.GeneratorOptions) (*Pluto, error) {
	if strings.TrimSpace(opts.Binary) == "" {
		return nil, fmt.Errorf("pluto: binary not set: %w", contract.ErrInvalidInput)
	}
	return &Pluto{opts: opts}, nil
}

var _ contract.Generator = (*Pluto)(nil)

// Tag 去掉反冲质子后按配置层数生成衰变标识。
// 缺少质子时整条表达式参与计算（调用方负责告警）。
func (p *Pluto) Tag(ch contract.Channel) (string, error) {
	rest, _ := contract.SplitRecoil(ch.Notation)
	tag, err := decay.DecayString(rest, p.opts.Level)
	if err != nil {
		return "", fmt.Errorf("pluto: channel %q: %w: %w", ch.Notation, contract.ErrChannelInvalid, err)
	}
	return tag, nil
}

// Command: <Ant-pluto> --reaction '<notation>' -o <file> -n <events> --Emin <f> --Emax <f> --no-bulk <add_flags>
func (p *Pluto) Command(job contract.Job) (string, error) {
	if job.MCGenFile == "" || job.Channel.Events <= 0 {
		return "", fmt.Errorf("pluto: job %d: %w", job.Number, contract.ErrInvalidInput)
	}
	reaction := strings.Trim(strings.TrimSpace(job.Channel.Notation), `"`)
	argv := []string{
		p.opts.Binary,
		"--reaction", reaction,
		"-o", job.MCGenFile,
		"-n", strconv.Itoa(job.Channel.Events),
		"--Emin", strconv.FormatFloat(p.opts.Emin, 'f', -1, 64),
		"--Emax", strconv.FormatFloat(p.opts.Emax, 'f', -1, 64),
		"--no-bulk",
	}
	cmd := shell.Join(argv)
	if f := strings.TrimSpace(p.opts.AddFlags); f != "" {
		cmd += " " + f
	}
	return cmd, nil
}

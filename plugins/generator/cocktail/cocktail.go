// Package cocktail 为 "Cocktail" 通道生成 Ant-cocktail 命令。
package cocktail

import (
	"fmt"
	"strconv"
	"strings"

	"simblaster/internal/shell"
	"simblaster/pkg/contract"
)

// Tag: 所有 cocktail 文件共用的标识。
const Tag = "cocktail"

type Cocktail struct {
	opts contract.GeneratorOptions
}

// New 创建 cocktail 生成器；Setup 与 Binning 必须且只能设置其一。
func New(opts contract.GeneratorOptions) (*Cocktail, error) {
	if strings.TrimSpace(opts.Binary) == "" {
		return nil, fmt.Errorf("cocktail: binary not set: %w", contract.ErrInvalidInput)
	}
	hasSetup := strings.TrimSpace(opts.CocktailSetup) != ""
	if hasSetup == (opts.CocktailBinning > 0) {
		return nil, fmt.Errorf("cocktail: exactly one of setup or binning required: %w", contract.ErrInvalidInput)
	}
	return &Cocktail{opts: opts}, nil
}

var _ contract.Generator = (*Cocktail)(nil)

func (c *Cocktail) Tag(ch contract.Channel) (string, error) {
	if contract.KindOf(ch.Notation) != contract.KindCocktail {
		return "", fmt.Errorf("cocktail: channel %q: %w", ch.Notation, contract.ErrChannelInvalid)
	}
	return Tag, nil
}

// Command: <Ant-cocktail> -o <file> -n <events> --Emin <f> --Emax <f> (-s <setup> | -N <bins>) --no-bulk <add_flags>
func (c *Cocktail) Command(job contract.Job) (string, error) {
	if job.MCGenFile == "" || job.Channel.Events <= 0 {
		return "", fmt.Errorf("cocktail: job %d: %w", job.Number, contract.ErrInvalidInput)
	}
	argv := []string{
		c.opts.Binary,
		"-o", job.MCGenFile,
		"-n", strconv.Itoa(job.Channel.Events),
		"--Emin", strconv.FormatFloat(c.opts.Emin, 'f', -1, 64),
		"--Emax", strconv.FormatFloat(c.opts.Emax, 'f', -1, 64),
	}
	if s := strings.TrimSpace(c.opts.CocktailSetup); s != "" {
		argv = append(argv, "-s", s)
	} else {
		argv = append(argv, "-N", strconv.Itoa(c.opts.CocktailBinning))
	}
	argv = append(argv, "--no-bulk")
	cmd := shell.Join(argv)
	if f := strings.TrimSpace(c.opts.AddFlags); f != "" {
		cmd += " " + f
	}
	return cmd, nil
}

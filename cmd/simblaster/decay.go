package main

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"simblaster/pkg/contract"
	"simblaster/pkg/decay"
)

// decayReport: decay 子命令的单条输出。
type decayReport struct {
	Notation     string     `json:"notation"`
	Normalized   string     `json:"normalized"`
	ID           string     `json:"id"`
	Initial      []string   `json:"initial"`
	Intermediate [][]string `json:"intermediate"`
	Final        []string   `json:"final"`
	MaxDepth     int        `json:"max_depth"`
	Spans        []spanInfo `json:"spans,omitempty"`
	Warnings     []string   `json:"warnings,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// spanInfo: 一对括号的内容；偏移相对 normalized。
type spanInfo struct {
	Depth   int    `json:"depth"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Content string `json:"content"`
}

func newDecayCmd(stdout io.Writer) *cobra.Command {
	var (
		level  int
		strict bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "decay <notation>...",
		Short: "Print the decay identifier and state classification of Pluto notations",
		Example: "simblaster decay \"p eta' [g rho0 [g pi0 [g g]]]\"\n" +
			"simblaster decay --level 0 --json \"omega [pi0 [g g] g]\"",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				reports  []decayReport
				firstErr error
			)
			for _, n := range args {
				rep, err := describe(n, level, strict)
				if err != nil {
					firstErr = errors.Join(firstErr, err)
				}
				reports = append(reports, rep)
			}
			if asJSON {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reports); err != nil {
					return err
				}
				return firstErr
			}
			for i, rep := range reports {
				if i > 0 {
					fprintf(stdout, "\n")
				}
				writeReport(stdout, rep)
			}
			return firstErr
		},
	}
	f := cmd.Flags()
	f.IntVarP(&level, "level", "l", decay.DefaultLevel, "标识中保留的中间态层数（0 = 全部）")
	f.BoolVar(&strict, "strict", false, "多余的 ']' 视为错误")
	f.BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

// describe 解析一条表达式；开头的反冲质子 "p " 被去掉，与文件命名一致。
func describe(notation string, level int, strict bool) (decayReport, error) {
	rep := decayReport{Notation: notation}
	rest, _ := contract.SplitRecoil(notation)
	t, err := decay.ParseWith(rest, decay.Options{Strict: strict})
	if err != nil {
		rep.Error = err.Error()
		return rep, err
	}
	c := decay.Classify(t)
	rep.Normalized = t.Format()
	rep.ID = decay.Assemble(c, level)
	rep.Initial = c.Initial
	rep.Final = c.Final
	rep.MaxDepth = c.MaxDepth
	spans, _ := decay.Spans(t.Notation)
	for _, sp := range spans {
		rep.Spans = append(rep.Spans, spanInfo{Depth: sp.Depth, Start: sp.Start, End: sp.End, Content: sp.Content})
	}
	rep.Intermediate = make([][]string, c.MaxDepth)
	for d := 0; d < c.MaxDepth; d++ {
		rep.Intermediate[d] = c.Intermediate[d]
	}
	for _, w := range c.Warnings {
		rep.Warnings = append(rep.Warnings, w.String())
	}
	return rep, nil
}

func writeReport(w io.Writer, rep decayReport) {
	fprintf(w, "%s\n", rep.Notation)
	if rep.Error != "" {
		fprintf(w, "  error:        %s\n", rep.Error)
		return
	}
	fprintf(w, "  id:           %s\n", rep.ID)
	fprintf(w, "  normalized:   %s\n", rep.Normalized)
	fprintf(w, "  initial:      %s\n", strings.Join(rep.Initial, " "))
	for d, toks := range rep.Intermediate {
		fprintf(w, "  level %-7d %s\n", d, strings.Join(toks, " "))
	}
	fprintf(w, "  final:        %s\n", strings.Join(rep.Final, " "))
	for _, s := range rep.Warnings {
		fprintf(w, "  warning:      %s\n", s)
	}
}

// Package dryrun 记录而不提交作业；用于 --dry-run 与测试。
package dryrun

import (
	"context"
	"fmt"
	"io"
	"sync"

	"simblaster/internal/shell"
	"simblaster/pkg/contract"
	"simblaster/plugins/submitter/qsub"
)

// Options: Out 非 nil 时逐条打印将要执行的提交命令。
type Options struct {
	Submit contract.SubmitOptions
	Out    io.Writer
}

type DryRun struct {
	opts Options

	mu   sync.Mutex
	jobs []contract.Job
}

func New(opts Options) *DryRun { return &DryRun{opts: opts} }

var _ contract.Submitter = (*DryRun)(nil)

func (d *DryRun) Argv(job contract.Job) []string { return qsub.Argv(d.opts.Submit, job) }

func (d *DryRun) Submit(ctx context.Context, job contract.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
	if d.opts.Out != nil {
		fmt.Fprintf(d.opts.Out, "echo %s | %s\n", shell.Quote(job.Script), shell.Join(d.Argv(job)))
	}
	return nil
}

// Jobs 返回已记录作业的副本（按提交完成顺序）。
func (d *DryRun) Jobs() []contract.Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]contract.Job(nil), d.jobs...)
}

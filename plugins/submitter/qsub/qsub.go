// Package qsub 通过 PBS/Torque 的 qsub 提交作业；脚本经 stdin 传入。
package qsub

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"simblaster/pkg/contract"
)

// JobTag: 作业名前缀，作业名形如 Sim/<n>。
const JobTag = "Sim"

// TripAfter: 连续失败达到该次数后熔断，后续提交立即失败。
const TripAfter = 5

// Argv 构造 qsub 命令行：
// <qsub> -m <mail> -M <user>@<domain> -N Sim/<n> -j oe -o <log> -z -q <queue> -V -p <prio> -l ncpus=1,walltime=<wt>
func Argv(o contract.SubmitOptions, job contract.Job) []string {
	return []string{
		o.Bin,
		"-m", o.Mail,
		"-M", o.User + "@" + o.Domain,
		"-N", JobTag + "/" + strconv.Itoa(job.Number),
		"-j", "oe",
		"-o", job.LogFile,
		"-z",
		"-q", o.Queue,
		"-V",
		"-p", strconv.Itoa(o.Priority),
		"-l", "ncpus=1,walltime=" + o.Walltime,
	}
}

// runFunc 执行一次提交并返回合并输出。
type runFunc func(ctx context.Context, argv []string, stdin string) ([]byte, error)

type Qsub struct {
	opts contract.SubmitOptions
	cb   *gobreaker.CircuitBreaker
	run  runFunc
}

// New 创建 qsub 提交器。
func New(opts contract.SubmitOptions) (*Qsub, error) {
	if strings.TrimSpace(opts.Bin) == "" || strings.TrimSpace(opts.Queue) == "" || strings.TrimSpace(opts.Walltime) == "" {
		return nil, fmt.Errorf("qsub: bin/queue/walltime required: %w", contract.ErrInvalidInput)
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "qsub",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= TripAfter
		},
		// 取消不计入失败
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	})
	return &Qsub{opts: opts, cb: cb, run: execRun}, nil
}

var _ contract.Submitter = (*Qsub)(nil)

func (q *Qsub) Argv(job contract.Job) []string { return Argv(q.opts, job) }

// Submit 提交单个作业；熔断打开时不再调用 qsub。
func (q *Qsub) Submit(ctx context.Context, job contract.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	argv := q.Argv(job)
	_, err := q.cb.Execute(func() (interface{}, error) {
		out, err := q.run(ctx, argv, job.Script)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			msg := strings.TrimSpace(string(out))
			if msg != "" {
				return nil, fmt.Errorf("%w: %s", err, msg)
			}
			return nil, err
		}
		return out, nil
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("qsub: job %s/%d: circuit open: %w", JobTag, job.Number, contract.ErrSubmitFailed)
	}
	return fmt.Errorf("qsub: job %s/%d: %w: %w", JobTag, job.Number, contract.ErrSubmitFailed, err)
}

// State 返回熔断器状态（closed/half-open/open）。
func (q *Qsub) State() string { return q.cb.State().String() }

func execRun(ctx context.Context, argv []string, stdin string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(stdin + "\n")
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.Bytes(), err
}

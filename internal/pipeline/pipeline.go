package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"simblaster/internal/diag"
	"simblaster/internal/rate"
	"simblaster/internal/shell"
	"simblaster/pkg/contract"
)

// - 单点并发：仅 Submit 管理并发；生成器、扫描器均为同步实现。
// - 编号：同一标识的新文件自已有最大编号 +1 起连续递增；Number 为本次提交的全局序号。
// - 首错取消：任一作业提交失败即取消其余提交，返回该错误。
// - 提交日志：无论成败都写出，只记录已成功提交的作业。

// Components 聚合运行所需的原子组件。
type Components struct {
	// Generators: 按通道类别索引；Plan 只要求用到的类别存在。
	Generators map[contract.Kind]contract.Generator
	Submitter  contract.Submitter
	Scanner    contract.Scanner
	Writer     contract.Writer
}

// Settings 运行期配置（目录均为绝对路径）。
type Settings struct {
	MCGenDir string
	GeantDir string
	LogDir   string
	// TID: Ant-addTID；为空时不追加该步骤。
	TID string
	// Geant: runGeant.sh；GeantFlags 原样附加在其参数之后。
	Geant      string
	GeantFlags string

	Concurrency int
	Channels    []contract.Channel
	// Gate: 提交限速；nil 不限速。
	Gate rate.Gate
	// Now: 提交日志时间戳来源；nil 时使用 time.Now。
	Now func() time.Time
}

// ChannelPlan: 单个通道的提交计划。
type ChannelPlan struct {
	Channel contract.Channel
	Kind    contract.Kind
	Tag     string
	// Existing: 提交前已有文件的最大编号。
	Existing contract.Seqs
	First    int
	Last     int
}

// Schedule: Plan 的结果。
type Schedule struct {
	Channels []ChannelPlan
	Jobs     []contract.Job
}

// Files 返回计划作业总数。
func (s *Schedule) Files() int { return len(s.Jobs) }

// Events 返回计划事件总数。
func (s *Schedule) Events() int {
	n := 0
	for _, c := range s.Channels {
		n += c.Channel.Files * c.Channel.Events
	}
	return n
}

// Plan 为每个通道确定标识与文件编号，并生成作业脚本。
// 同一标识出现在多个通道时，后者接在前者之后编号。
func Plan(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (*Schedule, error) {
	if err := sanity(comp, set); err != nil {
		return nil, fmt.Errorf("sanity: %w", err)
	}
	timer := logger.Start("planner", "plan")
	next := make(map[string]int)
	out := &Schedule{}
	number := 0
	for _, ch := range set.Channels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		kind := contract.KindOf(ch.Notation)
		gen, ok := comp.Generators[kind]
		if !ok || gen == nil {
			return nil, fmt.Errorf("no generator for %s channel %q: %w", kind, ch.Notation, contract.ErrInvalidInput)
		}
		if kind == contract.KindPluto {
			if _, ok := contract.SplitRecoil(ch.Notation); !ok {
				logger.Warn("planner", "recoil proton missing, notation used as is", ch.Notation, nil)
			}
		}
		tag, err := gen.Tag(ch)
		if err != nil {
			fail(logger, "planner", "tag failed", err, ch.Notation, "")
			return nil, fmt.Errorf("channel %q: %w", ch.Notation, err)
		}
		seqs, err := comp.Scanner.Scan(ctx, tag)
		if err != nil {
			fail(logger, "scanner", "scan failed", err, tag, "")
			return nil, fmt.Errorf("scan %s: %w", tag, err)
		}
		if !seqs.Consistent() {
			logger.Warn("scanner", "generator and geant file numbers differ", tag, map[string]string{
				"mcgen": strconv.Itoa(seqs.MCGen),
				"geant": strconv.Itoa(seqs.Geant),
			})
		}
		base, seen := next[tag]
		if !seen || seqs.Max() > base {
			base = seqs.Max()
		}
		cp := ChannelPlan{Channel: ch, Kind: kind, Tag: tag, Existing: seqs, First: base + 1, Last: base + ch.Files}
		for seq := cp.First; seq <= cp.Last; seq++ {
			number++
			job, err := buildJob(gen, set, contract.Job{Number: number, Seq: seq, Channel: ch, Kind: kind, Tag: tag})
			if err != nil {
				fail(logger, "planner", "command failed", err, tag, strconv.Itoa(number))
				return nil, err
			}
			out.Jobs = append(out.Jobs, job)
		}
		next[tag] = cp.Last
		out.Channels = append(out.Channels, cp)
	}
	timer.Finish("plan", int64(len(out.Jobs)))
	diag.IncOp("planner", "finish", "success")
	return out, nil
}

// buildJob 填充文件路径并拼出作业脚本：生成器; addTID; runGeant。
func buildJob(gen contract.Generator, set Settings, job contract.Job) (contract.Job, error) {
	job.MCGenFile = filepath.Join(set.MCGenDir, contract.FileName(contract.PrefixMCGen, job.Tag, job.Seq, "root"))
	job.GeantFile = filepath.Join(set.GeantDir, contract.FileName(contract.PrefixGeant, job.Tag, job.Seq, "root"))
	job.LogFile = filepath.Join(set.LogDir, contract.FileName(contract.PrefixLog, job.Tag, job.Seq, "log"))
	genCmd, err := gen.Command(job)
	if err != nil {
		return job, fmt.Errorf("generator command %s #%d: %w", job.Tag, job.Seq, err)
	}
	var tidCmd string
	if set.TID != "" {
		tidCmd = shell.Join([]string{set.TID, job.MCGenFile})
	}
	geantCmd := shell.Join([]string{set.Geant, job.MCGenFile, job.GeantFile})
	if set.GeantFlags != "" {
		geantCmd += " " + set.GeantFlags
	}
	job.Script = shell.Script(genCmd, tidCmd, geantCmd)
	return job, nil
}

// Run 规划并提交全部作业，随后写出提交日志。
// 返回的 Schedule 在规划成功后总是非 nil，即使提交失败。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (*Schedule, error) {
	sched, err := Plan(ctx, comp, set, logger)
	if err != nil {
		return nil, err
	}
	return sched, Submit(ctx, comp, set, sched, logger)
}

// Submit 以有界并发提交 sched 中的作业并写出提交日志。
func Submit(ctx context.Context, comp Components, set Settings, sched *Schedule, logger *diag.Logger) error {
	if set.Concurrency < 1 {
		set.Concurrency = 1
	}
	start := time.Now()
	term := diag.GetTerminal()
	term.RunStart(len(sched.Jobs), set.Concurrency)

	var (
		mu   sync.Mutex
		done []contract.Job
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(set.Concurrency)
	for _, job := range sched.Jobs {
		if gctx.Err() != nil {
			break
		}
		job := job
		g.Go(func() error {
			id := strconv.Itoa(job.Number)
			t0 := time.Now()
			timer := logger.StartWith("submitter", "submit", job.Tag, id)
			logger.DebugStart("submitter", "script", job.Tag, id, map[string]string{"script": job.Script})
			if set.Gate != nil {
				if err := set.Gate.Wait(gctx, 1); err != nil {
					term.JobDone(false)
					return fmt.Errorf("job %d (%s #%d): %w", job.Number, job.Tag, job.Seq, err)
				}
			}
			if err := comp.Submitter.Submit(gctx, job); err != nil {
				term.JobDone(false)
				fail(logger, "submitter", "submit failed", err, job.Tag, id)
				return fmt.Errorf("job %d (%s #%d): %w", job.Number, job.Tag, job.Seq, err)
			}
			timer.Finish("submit", 1)
			diag.IncOp("submitter", "finish", "success")
			diag.ObserveDuration("submitter", "submit", time.Since(t0).Milliseconds())
			diag.IncJobs(string(job.Kind))
			term.JobDone(true)
			mu.Lock()
			done = append(done, job)
			mu.Unlock()
			return nil
		})
	}
	runErr := g.Wait()
	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}
	term.RunFinish(runErr == nil, time.Since(start))

	sort.Slice(done, func(i, j int) bool { return done[i].Number < done[j].Number })
	if werr := writeSubmitLog(ctx, comp, set, sched, done, logger); werr != nil {
		return errors.Join(runErr, werr)
	}
	return runErr
}

// writeSubmitLog 通过 Writer 写出 submit_<时间>.log。
// 上下文已取消时仍尝试写出，记录已提交部分。
func writeSubmitLog(ctx context.Context, comp Components, set Settings, sched *Schedule, done []contract.Job, logger *diag.Logger) error {
	now := time.Now
	if set.Now != nil {
		now = set.Now
	}
	ts := now()
	id := SubmitLogName(ts)
	timer := logger.StartWith("writer", "write", string(id), "")
	body := SubmitLog(sched, done, comp.Submitter, ts)
	wctx := context.WithoutCancel(ctx)
	if err := comp.Writer.Write(wctx, id, strings.NewReader(body)); err != nil {
		fail(logger, "writer", "write failed", err, string(id), "")
		return fmt.Errorf("submit log: %w", err)
	}
	timer.Finish("write", int64(len(done)))
	diag.IncOp("writer", "finish", "success")
	return nil
}

// fail 记录错误事件与计数。
func fail(logger *diag.Logger, comp, msg string, err error, channel, job string) {
	code := diag.Classify(err)
	logger.ErrorWith(comp, string(code), msg+": "+err.Error(), nil, channel, job)
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
}

func sanity(c Components, s Settings) error {
	if len(c.Generators) == 0 || c.Submitter == nil || c.Scanner == nil || c.Writer == nil {
		return errors.New("pipeline: missing components")
	}
	if s.MCGenDir == "" || s.GeantDir == "" || s.LogDir == "" || s.Geant == "" {
		return fmt.Errorf("pipeline: directories or geant not set: %w", contract.ErrInvalidInput)
	}
	if len(s.Channels) == 0 {
		return fmt.Errorf("pipeline: no channels: %w", contract.ErrInvalidInput)
	}
	for _, ch := range s.Channels {
		if ch.Files <= 0 || ch.Events <= 0 {
			return fmt.Errorf("pipeline: channel %q files/events must be > 0: %w", ch.Notation, contract.ErrChannelInvalid)
		}
	}
	return nil
}

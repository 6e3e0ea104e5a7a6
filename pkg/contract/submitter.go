package contract

import "context"

// SubmitOptions: 批处理提交参数。
type SubmitOptions struct {
	Bin      string
	Mail     string
	User     string
	Domain   string
	Queue    string
	Walltime string
	Priority int
}

// Submitter: 把作业脚本交给批处理系统。
// 约束：
// - Submit 可被多个 goroutine 并发调用；
// - ctx 取消时尽快返回 ctx.Err()；
// - 失败以 ErrSubmitFailed 包装。
type Submitter interface {
	// Argv 返回提交该作业所用的命令行（用于日志与 dry-run 展示）。
	Argv(job Job) []string
	Submit(ctx context.Context, job Job) error
}

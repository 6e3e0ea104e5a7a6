package diag

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"simblaster/pkg/contract"
	"simblaster/pkg/decay"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown   Code = "unknown"
	CodeConfig    Code = "config"
	CodeSyntax    Code = "syntax"
	CodeInvariant Code = "invariant"
	CodeIO        Code = "io"
	CodeExec      Code = "exec"
	CodeCancel    Code = "cancel"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	var se *decay.SyntaxError
	if errors.As(err, &se) || errors.Is(err, contract.ErrChannelInvalid) {
		return CodeSyntax
	}
	if errors.Is(err, contract.ErrInvalidInput) || errors.Is(err, contract.ErrPathInvalid) {
		return CodeConfig
	}
	if errors.Is(err, contract.ErrSubmitFailed) || errors.Is(err, contract.ErrBinaryMissing) {
		return CodeExec
	}
	var xerr *exec.ExitError
	if errors.As(err, &xerr) || errors.Is(err, exec.ErrNotFound) {
		return CodeExec
	}
	if errors.Is(err, contract.ErrInvariantViolation) {
		return CodeInvariant
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// NowUTC 返回 RFC3339 UTC 时间字符串。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

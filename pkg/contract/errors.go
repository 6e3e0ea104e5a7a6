package contract

import "errors"

// 最小错误分类（errors.Is 可匹配；调用方以 %w 包装上下文）。
var (
	// ErrInvalidInput: 参数或配置取值非法。
	ErrInvalidInput = errors.New("invalid input")
	// ErrPathInvalid: 目标标识映射为无效/越界路径（例如绝对路径或 '..' 逃逸），或目录不可用。
	ErrPathInvalid = errors.New("path invalid")
	// ErrBinaryMissing: 所需可执行文件不存在或不可执行。
	ErrBinaryMissing = errors.New("binary missing")
	// ErrChannelInvalid: 通道条目无法解析（表达式、文件数或事件数）。
	ErrChannelInvalid = errors.New("channel invalid")
	// ErrSubmitFailed: 作业提交失败（批处理系统返回错误或熔断打开）。
	ErrSubmitFailed = errors.New("submit failed")
	// ErrInvariantViolation: 领域不变量违例（通用哨兵）。
	ErrInvariantViolation = errors.New("invariant violation")
)

package contract

import (
	"context"
	"io"
)

// ArtifactID: 持久化工件标识（相对输出根目录的路径，如 "submit_2024-01-31_12.30.log"）。
type ArtifactID string

// Writer: 将工件以流式方式持久化到目标介质。
// 约束：
//  1. 同一 ArtifactID 单写者；
//  2. 流式写入，按字节透传，不读取/修改内容；
//  3. ctx 取消/超时需尽快返回；
//  4. 错误直接上抛（不做重试/回退）。
type Writer interface {
	Write(ctx context.Context, id ArtifactID, r io.Reader) error
}

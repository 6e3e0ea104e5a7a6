// Package rate 按分钟额度限制作业提交速率（令牌桶）。
package rate

import (
	"context"
	"sync"
	"time"

	"simblaster/pkg/contract"
)

// Limits: 0 表示不启用。
type Limits struct {
	// PerMinute: 每分钟允许的提交数（稳态速率）。
	PerMinute int
	// Burst: 桶容量；<=0 时取 PerMinute。
	Burst int
}

// Gate: 提交闸门（并发安全）。
type Gate interface {
	// Wait: 阻塞直到可以提交 n 个作业或 ctx 取消。
	Wait(ctx context.Context, n int) error
	// Try: 非阻塞尝试；不足时返回 false。
	Try(n int) bool
	// Available: 当前可立即提交的作业数（向下取整，诊断用）。
	Available() int
}

// NewGate 构造闸门；PerMinute<=0 时返回不限速的闸门。clk 为空则使用 time.Now。
func NewGate(lim Limits, clk func() time.Time) Gate {
	if clk == nil {
		clk = time.Now
	}
	g := &gate{clk: clk}
	if lim.PerMinute > 0 {
		capacity := lim.Burst
		if capacity <= 0 {
			capacity = lim.PerMinute
		}
		g.b = bucket{cap: capacity, level: float64(capacity), rate: float64(lim.PerMinute) / 60.0, last: clk()}
	}
	return g
}

type gate struct {
	clk func() time.Time
	mu  sync.Mutex
	b   bucket
}

type bucket struct {
	cap   int
	level float64
	rate  float64 // 每秒补充量
	last  time.Time
}

func (b *bucket) enabled() bool { return b.cap > 0 }

func (b *bucket) refill(now time.Time) {
	if !b.enabled() || now.Before(b.last) {
		// 时钟回拨视为无时间流逝
		return
	}
	b.level += now.Sub(b.last).Seconds() * b.rate
	if b.level > float64(b.cap) {
		b.level = float64(b.cap)
	}
	b.last = now
}

func (b *bucket) canTake(n int) bool { return !b.enabled() || b.level >= float64(n) }

func (b *bucket) take(n int) {
	if b.enabled() {
		b.level -= float64(n)
	}
}

// waitFor 返回可消费 n 还需等待的时长。
func (b *bucket) waitFor(n int) time.Duration {
	deficit := float64(n) - b.level
	if !b.enabled() || deficit <= 0 {
		return 0
	}
	return time.Duration(deficit / b.rate * float64(time.Second))
}

func (g *gate) Try(n int) bool {
	if n <= 0 {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.b.refill(g.clk())
	if !g.b.canTake(n) {
		return false
	}
	g.b.take(n)
	return true
}

func (g *gate) Wait(ctx context.Context, n int) error {
	if n <= 0 {
		return contract.ErrInvalidInput
	}
	g.mu.Lock()
	over := g.b.enabled() && n > g.b.cap
	g.mu.Unlock()
	if over {
		// 超过桶容量的请求永远无法满足
		return contract.ErrInvalidInput
	}
	const minSleep = 10 * time.Millisecond
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.mu.Lock()
		g.b.refill(g.clk())
		if g.b.canTake(n) {
			g.b.take(n)
			g.mu.Unlock()
			return nil
		}
		d := g.b.waitFor(n) + minSleep
		g.mu.Unlock()
		if err := sleepCtx(ctx, d); err != nil {
			return err
		}
	}
}

func (g *gate) Available() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.b.enabled() {
		return -1
	}
	g.b.refill(g.clk())
	if g.b.level < 0 {
		return 0
	}
	return int(g.b.level)
}

// sleepCtx 分片睡眠（最多 200ms 一步），及时响应取消。
func sleepCtx(ctx context.Context, d time.Duration) error {
	const step = 200 * time.Millisecond
	for d > 0 {
		s := min(d, step)
		t := time.NewTimer(s)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		d -= s
	}
	return nil
}

var _ Gate = (*gate)(nil)

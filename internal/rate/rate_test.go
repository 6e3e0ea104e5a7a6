package rate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simblaster/pkg/contract"
)

// fakeClock: 可手动推进的时钟。
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time { c.mu.Lock(); defer c.mu.Unlock(); return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.mu.Lock(); c.now = c.now.Add(d); c.mu.Unlock() }

// UT-RTE-01: 桶耗尽后拒绝，按速率补充
func TestGateTryLimit(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	g := NewGate(Limits{PerMinute: 60, Burst: 2}, clk.Now)
	assert.True(t, g.Try(1))
	assert.True(t, g.Try(1))
	assert.False(t, g.Try(1))
	assert.Equal(t, 0, g.Available())

	clk.Advance(time.Second)
	assert.Equal(t, 1, g.Available())
	assert.True(t, g.Try(1))
	assert.False(t, g.Try(0))

	// 补充不超过容量
	clk.Advance(time.Hour)
	assert.Equal(t, 2, g.Available())
}

// UT-RTE-02: 取消上下文
func TestGateWaitCancel(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	g := NewGate(Limits{PerMinute: 1}, clk.Now)
	require.NoError(t, g.Wait(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	assert.ErrorIs(t, g.Wait(ctx, 1), context.Canceled)
}

// UT-RTE-03: 时钟推进后 Wait 放行
func TestGateWaitRefill(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	g := NewGate(Limits{PerMinute: 600, Burst: 1}, clk.Now)
	require.True(t, g.Try(1))
	done := make(chan error, 1)
	go func() { done <- g.Wait(context.Background(), 1) }()
	clk.Advance(time.Second)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not return after refill")
	}
}

func TestGateInvalid(t *testing.T) {
	g := NewGate(Limits{PerMinute: 10, Burst: 3}, nil)
	assert.ErrorIs(t, g.Wait(context.Background(), 0), contract.ErrInvalidInput)
	assert.ErrorIs(t, g.Wait(context.Background(), 4), contract.ErrInvalidInput)
}

// 未启用时总是放行
func TestGateUnlimited(t *testing.T) {
	g := NewGate(Limits{}, nil)
	for i := 0; i < 1000; i++ {
		require.True(t, g.Try(1))
	}
	assert.NoError(t, g.Wait(context.Background(), 100))
	assert.Equal(t, -1, g.Available())
}

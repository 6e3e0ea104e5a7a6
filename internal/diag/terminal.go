package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Terminal: 终端信息提示（非日志）。
// - TTY: 进度条单行 \r 覆盖；非 TTY: 每 10% 分行打印一次。
// - 并发安全；写失败后进入禁用态为 no-op。
type Terminal struct {
	w       io.Writer
	enabled bool
	isTTY   bool

	total     int
	done      int
	errCount  int
	lastPct   int
	runStart  time.Time
	lastLen   int
	lastFlush time.Time

	mu sync.Mutex
}

// BarWidth: 进度条宽度（字符）。
const BarWidth = 20

// 进程级终端（可选，全局设置后供 pipeline 旁路调用）。
var (
	termMu sync.RWMutex
	term   *Terminal
)

// SetTerminal 设置全局终端指针（nil 可清除）。
func SetTerminal(t *Terminal) { termMu.Lock(); term = t; termMu.Unlock() }

// GetTerminal 返回全局终端（可能为 nil）。
func GetTerminal() *Terminal { termMu.RLock(); defer termMu.RUnlock(); return term }

// NewTerminal 构造终端提示器；enabled=false 时总是 no-op。
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	t := &Terminal{w: w, enabled: enabled}
	// CI 环境视为非 TTY
	if os.Getenv("CI") != "" {
		t.isTTY = false
	} else if f, ok := w.(*os.File); ok {
		if fi, err := f.Stat(); err == nil {
			t.isTTY = fi.Mode()&os.ModeCharDevice != 0
		}
	}
	return t
}

// Println 输出一行提示。
func (t *Terminal) Println(format string, args ...any) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	if t.isTTY && t.lastLen > 0 {
		t.printInline("")
	}
	t.println(fmt.Sprintf(format, args...))
}

// RunStart: 记录待提交作业总数与并发。
func (t *Terminal) RunStart(total, concurrency int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.total = total
	t.done = 0
	t.errCount = 0
	t.lastPct = -1
	t.runStart = time.Now()
	t.println(fmt.Sprintf("[run] 开始提交作业 %d 个 | 并发=%d", total, concurrency))
}

// JobDone: 单个作业提交完成（ok=false 计入错误）。
func (t *Terminal) JobDone(ok bool) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.done++
	if !ok {
		t.errCount++
	}
	pct := Percent(t.done, t.total)
	if t.isTTY {
		// 节流：100ms；最后一个总是刷新
		now := time.Now()
		if t.done < t.total && now.Sub(t.lastFlush) < 100*time.Millisecond {
			return
		}
		t.lastFlush = now
		t.printInline(ProgressBar(t.done, t.total, BarWidth))
		return
	}
	if pct/10 != t.lastPct/10 || t.done == t.total {
		t.lastPct = pct
		t.println(ProgressBar(t.done, t.total, BarWidth))
	}
}

// RunFinish: 结束总览。
func (t *Terminal) RunFinish(ok bool, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	tag := "ok"
	if !ok {
		tag = "fail"
	}
	if t.isTTY && t.lastLen > 0 {
		_, _ = io.WriteString(t.w, "\n")
		t.lastLen = 0
	}
	t.println(fmt.Sprintf("[%s] 已提交 %d/%d | 错误 %d | 总用时 %s", tag, t.done-t.errCount, t.total, t.errCount, formatDur(dur)))
}

// ProgressBar 渲染 "[=====     ]  50%"；百分比向上取整，保证最后一次为 100%。
func ProgressBar(done, total, width int) string {
	if width <= 0 {
		width = BarWidth
	}
	fill := 0
	if total > 0 {
		fill = done * width / total
	}
	if fill > width {
		fill = width
	}
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("=", fill), strings.Repeat(" ", width-fill), Percent(done, total))
}

// Percent 返回 ceil(done*100/total)，上限 100；total<=0 时为 100。
func Percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	p := (done*100 + total - 1) / total
	if p > 100 {
		p = 100
	}
	return p
}

func (t *Terminal) println(s string) {
	if t == nil || !t.enabled {
		return
	}
	if _, err := io.WriteString(t.w, s+"\n"); err != nil {
		t.enabled = false
	}
	t.lastLen = 0
}

func (t *Terminal) printInline(s string) {
	if t == nil || !t.enabled {
		return
	}
	// 若新行比旧行短，填充空格覆盖残留
	pad := 0
	if l := visLen(s); t.lastLen > l {
		pad = t.lastLen - l
	}
	var b strings.Builder
	b.WriteByte('\r')
	b.WriteString(s)
	b.WriteString(strings.Repeat(" ", pad))
	if _, err := io.WriteString(t.w, b.String()); err != nil {
		t.enabled = false
		return
	}
	t.lastLen = visLen(s)
}

func visLen(s string) int { return len([]rune(s)) }

func formatDur(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		if ms < 0 {
			ms = 0
		}
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(d.Milliseconds())/1000.0)
}

package diag

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 为结构化日志器：zap JSON 编码，每个事件一行。
// 事件字段：level, ts, corr_id, comp, stage(start|finish|error), code, dur_ms, count, channel, job, msg, kv。
type Logger struct {
	z     *zap.Logger
	level zap.AtomicLevel
	sink  *RotatingFile
}

// NewLogger 写入 dir/simblaster-current.log（10 MiB 轮转）。
func NewLogger(corrID, level, dir string) *Logger {
	sink := NewRotatingFile(dir, 10*1024*1024)
	l := NewLoggerTo(corrID, level, sink)
	l.sink = sink
	return l
}

// NewLoggerTo 写入任意 WriteSyncer（测试或 stderr）。
func NewLoggerTo(corrID, level string, ws zapcore.WriteSyncer) *Logger {
	lvl := zap.NewAtomicLevelAt(parseLevel(level))
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     utcRFC3339,
		EncodeDuration: zapcore.MillisDurationEncoder,
	})
	core := zapcore.NewCore(enc, ws, lvl)
	z := zap.New(core).With(zap.String("corr_id", corrID))
	return &Logger{z: z, level: lvl}
}

// Nop 返回丢弃全部事件的 Logger。
func Nop() *Logger {
	return &Logger{z: zap.NewNop(), level: zap.NewAtomicLevel()}
}

func utcRFC3339(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339))
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLevel 运行期调整级别（--verbose 提升至 debug）。
func (l *Logger) SetLevel(level string) {
	if l == nil {
		return
	}
	l.level.SetLevel(parseLevel(level))
}

// Enabled 报告 level 是否会被输出。
func (l *Logger) Enabled(level string) bool {
	if l == nil {
		return false
	}
	return l.level.Enabled(parseLevel(level))
}

// Sync 刷新缓冲。
func (l *Logger) Sync() error {
	if l == nil || l.z == nil {
		return nil
	}
	return l.z.Sync()
}

// Close 刷新并关闭文件 sink。
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.Sync()
	if l.sink != nil {
		return l.sink.Close()
	}
	return nil
}

// Event 为标准事件结构。
type Event struct {
	Comp    string
	Stage   string // start|finish|error
	Code    string
	DurMS   int64
	Count   int64
	Channel string
	Job     string
	Msg     string
	KV      map[string]string
}

func (l *Logger) log(lv zapcore.Level, ev Event) {
	if l == nil || l.z == nil {
		return
	}
	ce := l.z.Check(lv, ev.Msg)
	if ce == nil {
		return
	}
	fields := make([]zap.Field, 0, 8)
	fields = append(fields, zap.String("comp", ev.Comp))
	if ev.Stage != "" {
		fields = append(fields, zap.String("stage", ev.Stage))
	}
	if ev.Code != "" {
		fields = append(fields, zap.String("code", ev.Code))
	}
	if ev.DurMS != 0 {
		fields = append(fields, zap.Int64("dur_ms", ev.DurMS))
	}
	if ev.Count != 0 {
		fields = append(fields, zap.Int64("count", ev.Count))
	}
	if ev.Channel != "" {
		fields = append(fields, zap.String("channel", ev.Channel))
	}
	if ev.Job != "" {
		fields = append(fields, zap.String("job", ev.Job))
	}
	if len(ev.KV) > 0 {
		fields = append(fields, zap.Any("kv", ev.KV))
	}
	ce.Write(fields...)
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	l.log(zapcore.InfoLevel, Event{Comp: comp, Stage: "start", Msg: msg})
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// StartWith 记录带 channel/job 的 start。
func (l *Logger) StartWith(comp, msg, channel, job string) *Timer {
	l.log(zapcore.InfoLevel, Event{Comp: comp, Stage: "start", Channel: channel, Job: job, Msg: msg})
	return &Timer{l: l, comp: comp, channel: channel, job: job, t0: time.Now()}
}

// Info 记录无阶段的信息事件。
func (l *Logger) Info(comp, msg string, kv map[string]string) {
	l.log(zapcore.InfoLevel, Event{Comp: comp, Msg: msg, KV: kv})
}

// Warn 记录告警（例如缺少反冲质子、文件编号不一致）。
func (l *Logger) Warn(comp, msg, channel string, kv map[string]string) {
	l.log(zapcore.WarnLevel, Event{Comp: comp, Channel: channel, Msg: msg, KV: kv})
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	l.ErrorWith(comp, code, msg, durSince, "", "")
}

// ErrorWith 支持 channel/job。
func (l *Logger) ErrorWith(comp, code, msg string, durSince *time.Time, channel, job string) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(zapcore.ErrorLevel, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, Msg: msg, Channel: channel, Job: job})
}

// InfoFinish 在已有起点的情况下记录 finish。
func (l *Logger) InfoFinish(comp, msg string, start time.Time, count int64) {
	l.log(zapcore.InfoLevel, Event{Comp: comp, Stage: "finish", DurMS: time.Since(start).Milliseconds(), Count: count, Msg: msg})
}

// DebugStart 输出调试级别的 start 事件（仅在 level=debug 时生效）。
func (l *Logger) DebugStart(comp, msg, channel, job string, kv map[string]string) {
	l.log(zapcore.DebugLevel, Event{Comp: comp, Stage: "start", Channel: channel, Job: job, Msg: msg, KV: kv})
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l       *Logger
	comp    string
	channel string
	job     string
	t0      time.Time
}

// Since 返回起点，供 Error(durSince) 使用。
func (t *Timer) Since() *time.Time {
	if t == nil {
		return nil
	}
	return &t.t0
}

// Finish 记录 finish；可选 count。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	t.l.log(zapcore.InfoLevel, Event{Comp: t.comp, Stage: "finish", DurMS: time.Since(t.t0).Milliseconds(), Count: count, Channel: t.channel, Job: t.job, Msg: msg})
}

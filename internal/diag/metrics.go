package diag

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// 指标（私有 registry，不注册到全局默认 registry）：
// - simblaster_op_total{comp,stage,result}
// - simblaster_error_total{comp,code}
// - simblaster_op_duration_ms{comp,stage}
// - simblaster_jobs_submitted_total{kind}
type Collector struct {
	registry *prometheus.Registry

	ops      *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	jobs     *prometheus.CounterVec
}

// NewCollector 创建并注册全部指标。
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simblaster",
			Name:      "op_total",
			Help:      "Operations by component, stage and result.",
		}, []string{"comp", "stage", "result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simblaster",
			Name:      "error_total",
			Help:      "Errors by component and classification code.",
		}, []string{"comp", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "simblaster",
			Name:      "op_duration_ms",
			Help:      "Stage duration in milliseconds.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 30000},
		}, []string{"comp", "stage"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "simblaster",
			Name:      "jobs_submitted_total",
			Help:      "Jobs handed to the batch system by generator kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(c.ops, c.errors, c.duration, c.jobs)
	return c
}

// Registry 暴露私有 registry（导出/测试）。
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// WriteTextfile 以文本暴露格式写出全部指标。
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// 进程级 Collector；包级函数在其上累加。
var (
	collectorMu sync.RWMutex
	collector   = NewCollector()
)

// Metrics 返回当前进程级 Collector。
func Metrics() *Collector {
	collectorMu.RLock()
	defer collectorMu.RUnlock()
	return collector
}

// ResetMetrics 以新 Collector 替换进程级实例并返回它。
func ResetMetrics() *Collector {
	c := NewCollector()
	collectorMu.Lock()
	collector = c
	collectorMu.Unlock()
	return c
}

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) {
	Metrics().ops.WithLabelValues(comp, stage, result).Inc()
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	Metrics().errors.WithLabelValues(comp, code).Inc()
}

// ObserveDuration 记录阶段耗时（毫秒）。
func ObserveDuration(comp, stage string, durMS int64) {
	Metrics().duration.WithLabelValues(comp, stage).Observe(float64(durMS))
}

// IncJobs 累加已提交作业数。
func IncJobs(kind string) {
	Metrics().jobs.WithLabelValues(kind).Inc()
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// 结果标签取值
const (
	ResultOK      = "ok"
	ResultSkipped = "skipped"
	ResultError   = "error"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

// AppMetrics 自定义业务指标
type AppMetrics struct {
	ParameterUpdateTotal   *prometheus.CounterVec   // labels: result=ok|skipped|error
	AssociationUpdateTotal *prometheus.CounterVec   // labels: result=ok|skipped|error
	CommandDispatchTotal   *prometheus.CounterVec   // labels: command, result
	CommandDispatchSeconds *prometheus.HistogramVec // labels: command
	ProductLookupTotal     *prometheus.CounterVec   // labels: source=cache|catalog, result
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		ParameterUpdateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zwave_parameter_update_total",
			Help: "Configuration parameter updates by result.",
		}, []string{"result"}),
		AssociationUpdateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zwave_association_update_total",
			Help: "Association group updates by result.",
		}, []string{"result"}),
		CommandDispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zwave_command_dispatch_total",
			Help: "Capability commands sent to devices.",
		}, []string{"command", "result"}),
		CommandDispatchSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zwave_command_dispatch_duration_seconds",
			Help:    "Capability command round trip latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		ProductLookupTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zwave_product_lookup_total",
			Help: "Product metadata lookups by source and result.",
		}, []string{"source", "result"}),
	}
	reg.MustRegister(m.ParameterUpdateTotal, m.AssociationUpdateTotal, m.CommandDispatchTotal, m.CommandDispatchSeconds, m.ProductLookupTotal)
	return m
}

// ObserveDispatch 记录一次命令下发（m 为 nil 时忽略）
func (m *AppMetrics) ObserveDispatch(command string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.CommandDispatchTotal.WithLabelValues(command, result).Inc()
	m.CommandDispatchSeconds.WithLabelValues(command).Observe(time.Since(started).Seconds())
}

// ParameterUpdate 记录参数更新结果
func (m *AppMetrics) ParameterUpdate(result string) {
	if m == nil {
		return
	}
	m.ParameterUpdateTotal.WithLabelValues(result).Inc()
}

// AssociationUpdate 记录关联组更新结果
func (m *AppMetrics) AssociationUpdate(result string) {
	if m == nil {
		return
	}
	m.AssociationUpdateTotal.WithLabelValues(result).Inc()
}

// ProductLookup 记录产品元数据查询
func (m *AppMetrics) ProductLookup(source, result string) {
	if m == nil {
		return
	}
	m.ProductLookupTotal.WithLabelValues(source, result).Inc()
}

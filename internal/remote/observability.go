package remote

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SyncEvent records the outcome of one remote call.
type SyncEvent struct {
	Op        Op
	ProjectID string
	TaskID    string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives an event after every remote call.
type Observer interface {
	OnSyncComplete(event SyncEvent)
}

// LogObserver writes every sync event through slog.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnSyncComplete(event SyncEvent) {
	status := "ok"
	level := slog.LevelInfo
	if !event.Success {
		status = "err:" + event.ErrorCode
		level = slog.LevelWarn
	}
	o.logger.Log(context.Background(), level, "sync_call",
		"op", string(event.Op),
		"project", event.ProjectID,
		"task", event.TaskID,
		"latency_ms", event.LatencyMs,
		"status", status,
	)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnSyncComplete(SyncEvent) {}

// MetricsObserver counts calls and records latency per op.
type MetricsObserver struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewMetricsObserver registers its collectors with reg.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	f := promauto.With(reg)
	return &MetricsObserver{
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tasktree",
			Subsystem: "sync",
			Name:      "calls_total",
			Help:      "Remote sync calls by operation and outcome.",
		}, []string{"op", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tasktree",
			Subsystem: "sync",
			Name:      "call_duration_seconds",
			Help:      "Latency of remote sync calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func (o *MetricsObserver) OnSyncComplete(event SyncEvent) {
	status := "ok"
	if !event.Success {
		status = event.ErrorCode
	}
	o.calls.WithLabelValues(string(event.Op), status).Inc()
	o.latency.WithLabelValues(string(event.Op)).Observe(float64(event.LatencyMs) / 1000)
}

// MultiObserver fans an event out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnSyncComplete(event SyncEvent) {
	for _, o := range m {
		o.OnSyncComplete(event)
	}
}

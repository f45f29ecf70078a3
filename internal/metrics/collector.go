// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector 指标收集器
type Collector struct {
	// Provider API 指标
	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	apiBytesDownloaded *prometheus.CounterVec

	// 任务轮询指标
	taskPollsTotal   *prometheus.CounterVec
	taskWaitDuration *prometheus.HistogramVec

	// 技能指标
	skillInvocationsTotal *prometheus.CounterVec
	skillInvokeDuration   *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of provider API requests",
		},
		[]string{"provider", "operation", "status"},
	)

	c.apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Provider API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	c.apiBytesDownloaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_bytes_downloaded_total",
			Help:      "Total bytes downloaded from provider result URLs",
		},
		[]string{"provider"},
	)

	c.taskPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_polls_total",
			Help:      "Total number of async task status polls",
		},
		[]string{"provider", "status"},
	)

	c.taskWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_wait_duration_seconds",
			Help:      "Time from task submission to terminal status",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"provider"},
	)

	c.skillInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skill_invocations_total",
			Help:      "Total number of skill invocations",
		},
		[]string{"skill", "status"},
	)

	c.skillInvokeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "skill_invoke_duration_seconds",
			Help:      "Skill invocation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"skill"},
	)

	return c
}

// RecordAPIRequest 记录一次 Provider API 调用
func (c *Collector) RecordAPIRequest(provider, operation, status string, duration time.Duration) {
	c.apiRequestsTotal.WithLabelValues(provider, operation, status).Inc()
	c.apiRequestDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordDownload 记录结果文件下载字节数
func (c *Collector) RecordDownload(provider string, bytes int64) {
	c.apiBytesDownloaded.WithLabelValues(provider).Add(float64(bytes))
}

// RecordTaskPoll 记录一次任务状态轮询
func (c *Collector) RecordTaskPoll(provider, status string) {
	c.taskPollsTotal.WithLabelValues(provider, status).Inc()
}

// RecordTaskWait 记录任务从提交到终态的耗时
func (c *Collector) RecordTaskWait(provider string, duration time.Duration) {
	c.taskWaitDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordSkillInvocation 记录一次技能调用
func (c *Collector) RecordSkillInvocation(skill string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.skillInvocationsTotal.WithLabelValues(skill, status).Inc()
	c.skillInvokeDuration.WithLabelValues(skill).Observe(duration.Seconds())
}

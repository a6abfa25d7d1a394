package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videogen_tasks_created_total",
		Help: "Total number of generation tasks created",
	})

	TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videogen_tasks_completed_total",
		Help: "Total number of generation tasks completed",
	})

	TasksFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videogen_tasks_failed_total",
		Help: "Total number of generation tasks failed",
	})

	StageFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videogen_stage_fallbacks_total",
		Help: "Total number of stage attempts degraded to the local fallback",
	}, []string{"stage"})

	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "videogen_pipeline_duration_seconds",
		Help:    "Full pipeline run duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	VideosServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videogen_videos_served_total",
		Help: "Total number of rendered videos streamed to clients",
	})
)

package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var jobOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_job_outcomes_total",
	Help: "Terminal outcomes of moderation jobs",
}, []string{"status"})

var stageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_stage_failures_total",
	Help: "Moderation stage failures by stage",
}, []string{"stage"})

var jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "moderation_job_duration_seconds",
	Help:    "Duration of one moderation attempt",
	Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
})

var jobRetries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_job_retries_total",
	Help: "Moderation attempts that failed and were retried",
})

var assetDeleteFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_asset_delete_failures_total",
	Help: "Rejected videos whose remote asset could not be deleted",
})

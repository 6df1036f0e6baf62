package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classifyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "moderation_classifier_duration_seconds",
	Help:    "Duration of image moderation calls",
	Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
}, []string{"provider", "status"})

var classifyLabels = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_classifier_labels_total",
	Help: "Labels returned by the image moderation provider",
}, []string{"provider", "label"})

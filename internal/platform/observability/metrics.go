package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aggro_records_collected_total",
		Help: "The total number of raw records collected per source",
	}, []string{"source"})

	SourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aggro_source_failures_total",
		Help: "The total number of failed source collections",
	}, []string{"source"})

	DuplicatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aggro_duplicates_dropped_total",
		Help: "Records dropped by cross-source deduplication",
	})

	RefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aggro_refreshes_total",
		Help: "The total number of category refreshes by outcome",
	}, []string{"category", "status"})

	RefreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aggro_refresh_duration_seconds",
		Help:    "Duration of a category refresh",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
	}, []string{"category"})

	PublishedRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aggro_published_records",
		Help: "Number of records per category in the published dataset",
	}, []string{"category"})

	LinkedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aggro_linked_records_total",
		Help: "Top records that received at least one similar news link",
	})
)

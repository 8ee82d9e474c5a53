package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ingestion holds the counters exported by the ingestion pipeline.
type Ingestion struct {
	RecordsAppended *prometheus.CounterVec
	EventsSkipped   *prometheus.CounterVec
	Duplicates      *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	LastRunSuccess  prometheus.Gauge
}

// NewIngestion creates the ingestion metrics and registers them on reg.
// A nil registerer leaves them unregistered, which is what tests want.
func NewIngestion(reg prometheus.Registerer) *Ingestion {
	m := &Ingestion{
		RecordsAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filings",
			Subsystem: "ingestion",
			Name:      "records_appended_total",
			Help:      "Filing records appended to ticker stores.",
		}, []string{"ticker"}),
		EventsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filings",
			Subsystem: "ingestion",
			Name:      "events_skipped_total",
			Help:      "Disclosure events skipped, by failing stage.",
		}, []string{"stage"}),
		Duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filings",
			Subsystem: "ingestion",
			Name:      "duplicates_total",
			Help:      "Disclosure events skipped because their URL was already stored.",
		}, []string{"ticker"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "filings",
			Subsystem: "ingestion",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full ingestion run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "filings",
			Subsystem: "ingestion",
			Name:      "last_run_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without a persist error.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.RecordsAppended, m.EventsSkipped, m.Duplicates, m.RunDuration, m.LastRunSuccess)
	}
	return m
}

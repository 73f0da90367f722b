package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type UpstreamMetrics struct {
	RequestDuration *prometheus.HistogramVec
}

type ScheduleMetrics struct {
	InstallmentsClassified *prometheus.CounterVec
	IntegrityWarnings      prometheus.Counter
	SchedulesServed        *prometheus.CounterVec
}

type SweepMetrics struct {
	Runs               *prometheus.CounterVec
	TransitionsEmitted *prometheus.CounterVec
	Duration           prometheus.Histogram
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_servicing_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Upstream = UpstreamMetrics{
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_servicing_upstream_request_duration_seconds",
				Help:    "Histogram of loan API request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "code"},
		),
	}

	Schedule = ScheduleMetrics{
		InstallmentsClassified: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_servicing_installments_classified_total",
				Help: "Installments classified, by derived status.",
			},
			[]string{"status"},
		),
		IntegrityWarnings: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_servicing_payment_record_integrity_warnings_total",
				Help: "Payment records excluded from a schedule because of unusable data.",
			},
		),
		SchedulesServed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_servicing_schedules_served_total",
				Help: "Schedules derived, by source of the installment records.",
			},
			[]string{"source"},
		),
	}

	Sweep = SweepMetrics{
		Runs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_servicing_sweep_runs_total",
				Help: "Status sweep runs, by outcome.",
			},
			[]string{"outcome"},
		),
		TransitionsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_servicing_sweep_transitions_total",
				Help: "Installment status transitions detected by the sweep.",
			},
			[]string{"to", "legal"},
		),
		Duration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "loan_servicing_sweep_duration_seconds",
				Help:    "Duration of status sweep runs.",
				Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800},
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordUpstreamRequest(endpoint, code string, duration time.Duration) {
	Upstream.RequestDuration.WithLabelValues(endpoint, code).Observe(duration.Seconds())
}

func RecordInstallmentStatus(status string) {
	Schedule.InstallmentsClassified.WithLabelValues(status).Inc()
}

func RecordIntegrityWarnings(n int) {
	Schedule.IntegrityWarnings.Add(float64(n))
}

func RecordScheduleServed(source string) {
	Schedule.SchedulesServed.WithLabelValues(source).Inc()
}

func RecordSweepRun(outcome string, duration time.Duration) {
	Sweep.Runs.WithLabelValues(outcome).Inc()
	Sweep.Duration.Observe(duration.Seconds())
}

func RecordTransition(to string, legal bool) {
	l := "true"
	if !legal {
		l = "false"
	}
	Sweep.TransitionsEmitted.WithLabelValues(to, l).Inc()
}

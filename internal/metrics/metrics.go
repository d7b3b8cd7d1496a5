// Package metrics records provisioning outcomes for scraping through a
// node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// Recorder holds the provisioning metrics in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	provisionTotal    *prometheus.CounterVec
	provisionDuration *prometheus.HistogramVec
	lastSuccess       prometheus.Gauge
}

// NewRecorder creates a Recorder with its metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		provisionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vmclone",
				Name:      "provision_total",
				Help:      "Total number of provisioning runs by result",
			},
			[]string{"result"},
		),

		provisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vmclone",
				Name:      "provision_duration_seconds",
				Help:      "Duration of provisioning runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(5, 2, 9), // 5s to ~21m
			},
			[]string{"result"},
		),

		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "vmclone",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful provisioning run",
			},
		),
	}

	r.registry.MustRegister(r.provisionTotal, r.provisionDuration, r.lastSuccess)
	return r
}

// ObserveProvision records one run that took d and ended with err.
func (r *Recorder) ObserveProvision(d time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailed
	}

	r.provisionTotal.WithLabelValues(result).Inc()
	r.provisionDuration.WithLabelValues(result).Observe(d.Seconds())
	if err == nil {
		r.lastSuccess.SetToCurrentTime()
	}
}

// Registry exposes the underlying registry as a Gatherer.
func (r *Recorder) Registry() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile atomically writes all metrics to path in the text
// exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

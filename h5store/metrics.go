package h5store

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics are the store's Prometheus collectors. Without WithMetrics they
// are created but never registered.
type metrics struct {
	datasetsWritten prometheus.Counter
	datasetsRead    prometheus.Counter
	datasetsRemoved prometheus.Counter
	bytesWritten    prometheus.Counter
	flushErrors     prometheus.Counter
	flushDuration   prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		datasetsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "h5store_datasets_written_total",
			Help: "Total number of datasets written.",
		}),
		datasetsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "h5store_datasets_read_total",
			Help: "Total number of datasets read.",
		}),
		datasetsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "h5store_datasets_removed_total",
			Help: "Total number of datasets removed.",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "h5store_payload_bytes_written_total",
			Help: "Total payload bytes accepted by dataset writes.",
		}),
		flushErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "h5store_flush_errors_total",
			Help: "Total number of failed container flushes.",
		}),
		flushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "h5store_flush_duration_seconds",
			Help:    "Duration of container flushes.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		return m
	}

	m.datasetsWritten = register(reg, m.datasetsWritten)
	m.datasetsRead = register(reg, m.datasetsRead)
	m.datasetsRemoved = register(reg, m.datasetsRemoved)
	m.bytesWritten = register(reg, m.bytesWritten)
	m.flushErrors = register(reg, m.flushErrors)
	m.flushDuration = register(reg, m.flushDuration)
	return m
}

// register adds c to reg. When an identical collector is already
// registered (another store on the same registry) that one is shared.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

package md5vault

import "github.com/prometheus/client_golang/prometheus"

// Validation results, used as the "result" label.
const (
	resultMatch    = "match"
	resultMismatch = "mismatch"
	resultUnknown  = "unknown"
	resultLimited  = "limited"
)

type metrics struct {
	accountsCreated prometheus.Counter
	validations     *prometheus.CounterVec
	digestDurations prometheus.Histogram
}

func newMetrics() *metrics {
	return &metrics{
		accountsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "md5vault",
			Name:      "accounts_created_total",
			Help:      "Total number of accounts created, including imported ones.",
		}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "md5vault",
			Name:      "validations_total",
			Help:      "Total number of password validations by result.",
		}, []string{"result"}),
		digestDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "md5vault",
			Name:      "digest_duration_seconds",
			Help:      "The latency distribution of password digest computation.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 2, 14),
		}),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.accountsCreated, m.validations, m.digestDurations}
}

// register adds every collector to reg. On failure the collectors added so
// far are removed again, leaving reg as it was.
func (m *metrics) register(reg prometheus.Registerer) error {
	cs := m.collectors()
	for i, c := range cs {
		if err := reg.Register(c); err != nil {
			for _, added := range cs[:i] {
				reg.Unregister(added)
			}
			return err
		}
	}
	return nil
}

func (m *metrics) unregister(reg prometheus.Registerer) {
	for _, c := range m.collectors() {
		reg.Unregister(c)
	}
}

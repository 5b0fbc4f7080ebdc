package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts detections by pattern and method.
type Metrics struct {
	files      prometheus.Counter
	detections *prometheus.CounterVec
	unmatched  prometheus.Counter
}

// NewMetrics registers the detection counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patternctl",
			Name:      "files_scanned_total",
			Help:      "Source files passed through the detection engine.",
		}),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patternctl",
			Name:      "detections_total",
			Help:      "Matched pattern detections.",
		}, []string{"pattern", "method"}),
		unmatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patternctl",
			Name:      "files_unmatched_total",
			Help:      "Source files with no matched pattern.",
		}),
	}
	reg.MustRegister(m.files, m.detections, m.unmatched)
	return m
}

func (m *Metrics) observe(rep Report) {
	if m == nil {
		return
	}
	m.files.Inc()
	if len(rep.Detections) == 0 {
		m.unmatched.Inc()
		return
	}
	for _, d := range rep.Detections {
		m.detections.WithLabelValues(string(d.Pattern), string(d.Method)).Inc()
	}
}

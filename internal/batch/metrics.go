package batch

import "github.com/prometheus/client_golang/prometheus"

var (
	callsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gptbridge",
			Subsystem: "batch",
			Name:      "calls_total",
			Help:      "Total Generate calls by outcome",
		},
		[]string{"outcome"},
	)

	promptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gptbridge",
			Subsystem: "batch",
			Name:      "prompts_total",
			Help:      "Total prompts written to request files",
		},
	)

	processSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gptbridge",
			Subsystem: "batch",
			Name:      "process_seconds",
			Help:      "Wall time of tool process runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	inflightBatches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gptbridge",
			Subsystem: "batch",
			Name:      "inflight",
			Help:      "Generate calls currently running",
		},
	)
)

func init() {
	prometheus.MustRegister(callsTotal, promptsTotal, processSeconds, inflightBatches)
}

// outcomeLabel buckets an error into a low-cardinality label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsInvalidInput(err):
		return "invalid_input"
	case IsProcessExecution(err):
		return "process_error"
	case IsMalformedResponse(err):
		return "malformed_response"
	case IsIncompleteResponse(err):
		return "incomplete_response"
	default:
		return "error"
	}
}

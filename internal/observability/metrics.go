package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// editsTotal counts finished edit transactions by edit type and status
	editsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_editor_edits_total",
		Help: "Total edit transactions by edit type and status",
	}, []string{"edit_type", "status"})

	// editFailures counts rejected edits by error kind
	editFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_editor_edit_failures_total",
		Help: "Total rejected edit transactions by error kind",
	}, []string{"kind"})

	// editDuration tracks end-to-end transaction latency per editor
	editDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resume_editor_edit_duration_seconds",
		Help:    "Edit transaction duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16), // 0.5ms to ~16s
	}, []string{"editor"})

	// collaboratorDuration tracks blocking calls to the generator and the render probe
	collaboratorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resume_editor_collaborator_duration_seconds",
		Help:    "Duration of generator and render probe calls in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 17), // 1ms to ~65s
	}, []string{"collaborator", "result"})
)

// RecordEdit records one finished edit transaction.
func RecordEdit(editType, status, editor string, elapsed time.Duration) {
	editsTotal.WithLabelValues(editType, status).Inc()
	if editor == "" {
		editor = "none"
	}
	editDuration.WithLabelValues(editor).Observe(elapsed.Seconds())
}

// RecordFailure records a rejected edit by error kind.
func RecordFailure(kind string) {
	editFailures.WithLabelValues(kind).Inc()
}

// RecordCollaborator records a generator or render probe call.
func RecordCollaborator(collaborator string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	collaboratorDuration.WithLabelValues(collaborator, result).Observe(elapsed.Seconds())
}

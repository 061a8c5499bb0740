package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loom_messages_appended_total",
			Help: "Messages appended to session timelines, by kind.",
		},
		[]string{"kind"},
	)

	DuplicatesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loom_duplicates_skipped_total",
			Help: "Appends skipped because the identity key was already present.",
		},
	)

	TextDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loom_text_dropped_total",
			Help: "Text messages dropped by the per-batch throttle cap.",
		},
	)

	FetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loom_fetch_failures_total",
			Help: "Artifact fetches that terminated with a transport error.",
		},
	)

	BatchesSettled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loom_batches_settled_total",
			Help: "Reconciliation batches that reached the settled state.",
		},
	)
)

func init() {
	prometheus.MustRegister(MessagesAppended)
	prometheus.MustRegister(DuplicatesSkipped)
	prometheus.MustRegister(TextDropped)
	prometheus.MustRegister(FetchFailures)
	prometheus.MustRegister(BatchesSettled)
}

// Handler exposes the process metrics for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	listingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followgate_list_requests_total",
			Help: "Total follow request listing calls by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)
	responsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followgate_follow_responses_total",
			Help: "Total follow request responses by decision and outcome",
		},
		[]string{"decision", "outcome"},
	)
	sequencedCommitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "followgate_sequenced_commits_total",
			Help: "Total commits published to the sequencing stream",
		},
	)
)

var registerOnce sync.Once

// Init registers the workflow metrics. Must be called once at startup.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(listingsTotal, responsesTotal, sequencedCommitsTotal)
	})
}

// RecordListing counts a listing call by direction and outcome.
func RecordListing(direction, outcome string) {
	listingsTotal.WithLabelValues(direction, outcome).Inc()
}

// RecordResponse counts an approve/deny call by decision and outcome.
func RecordResponse(decision, outcome string) {
	responsesTotal.WithLabelValues(decision, outcome).Inc()
}

// RecordSequencedCommit counts a commit published to the stream.
func RecordSequencedCommit() {
	sequencedCommitsTotal.Inc()
}

// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/emilythestrangee/reddit-clone/api/internal/votes"
)

const namespace = "reddit"

// Metrics implements votes.Recorder and records HTTP traffic.
type Metrics struct {
	votesTotal     *prometheus.CounterVec
	voteConflicts  *prometheus.CounterVec
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

var _ votes.Recorder = (*Metrics)(nil)

// New registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		votesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Reconciled votes by target kind and resulting action.",
		}, []string{"target", "action"}),
		voteConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_conflicts_total",
			Help:      "Votes that raced a concurrent write, by whether a retry resolved them.",
		}, []string{"target", "resolved"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) ObserveVote(kind votes.Kind, action votes.Action) {
	m.votesTotal.WithLabelValues(string(kind), action.String()).Inc()
}

func (m *Metrics) ObserveConflict(kind votes.Kind, resolved bool) {
	m.voteConflicts.WithLabelValues(string(kind), strconv.FormatBool(resolved)).Inc()
}

// ObserveRequest records one finished HTTP request. route is the matched
// route template, not the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

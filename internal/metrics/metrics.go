// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	InterviewSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_saves_total",
		Help: "Editor saves by outcome.",
	}, []string{"result"})

	InviteEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invite_emails_total",
		Help: "Invitation emails by outcome.",
	}, []string{"result"})

	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobs_processed_total",
		Help: "Background jobs by type and final status of the attempt.",
	}, []string{"type", "status"})

	ActiveWorkspaces = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "workspaces_active",
		Help: "Signed-in sessions holding a workspace.",
	})
)

// Outcome labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Outcome returns the result label for err.
func Outcome(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Package metrics defines the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registrations counts account creations by outcome ("ok", "duplicate",
	// "error").
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viewtube_registrations_total",
		Help: "Account registrations by outcome.",
	}, []string{"outcome"})

	// Logins counts login attempts by outcome ("ok", "rejected", "error").
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viewtube_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	// TokenRotations counts refresh-token rotations by outcome ("ok",
	// "invalid", "mismatch", "error").
	TokenRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viewtube_token_rotations_total",
		Help: "Refresh token rotations by outcome.",
	}, []string{"outcome"})

	// RequestDuration observes HTTP handler latency by route and status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "viewtube_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

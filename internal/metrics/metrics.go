// Package metrics holds the gateway's Prometheus collectors.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts edge requests by method, status class and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthRejectedTotal counts requests short-circuited by the auth gate.
	AuthRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_auth_rejected_total",
			Help: "Auth gate rejections",
		},
		[]string{"reason"},
	)

	// ProviderCallsTotal counts outbound OAuth provider calls by step and outcome.
	ProviderCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_provider_calls_total",
			Help: "OAuth provider calls",
		},
		[]string{"provider", "step", "status"},
	)

	// CacheWritesTotal counts provider token cache writes.
	CacheWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_token_cache_writes_total",
			Help: "Provider token cache writes",
		},
		[]string{"provider", "status"},
	)

	// FacadeBranchesTotal counts facade branch outcomes. A fallback status means
	// the branch was substituted.
	FacadeBranchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_facade_branches_total",
			Help: "Facade branch outcomes",
		},
		[]string{"branch", "status"},
	)

	ProxyUpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_proxy_upstream_errors_total",
			Help: "Proxied requests that failed to reach the backend",
		},
		[]string{"prefix"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthRejectedTotal,
		ProviderCallsTotal,
		CacheWritesTotal,
		FacadeBranchesTotal,
		ProxyUpstreamErrorsTotal,
	)
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

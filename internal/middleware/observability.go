package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gateway-service/internal/logger"
	"gateway-service/internal/metrics"
)

const tokenLogPrefix = 20

// Observability logs each request on entry and on completion and records
// request metrics. The completion record is written on every exit path,
// including short-circuits by inner interceptors.
type Observability struct{}

func (Observability) Intercept(c *gin.Context, next func()) {
	start := time.Now()
	method := c.Request.Method
	uri := c.Request.URL.RequestURI()

	logger.Info("request received", map[string]any{
		"method":  method,
		"uri":     uri,
		"headers": loggableHeaders(c.Request.Header),
	})

	defer func() {
		status := c.Writer.Status()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(method, strconv.Itoa(status/100)+"xx", route).Inc()
		metrics.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())

		logger.Info("request completed", map[string]any{
			"method":     method,
			"uri":        uri,
			"status":     status,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}()

	next()
}

func loggableHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		v := strings.Join(values, ", ")
		switch http.CanonicalHeaderKey(name) {
		case "Authorization":
			v = redact(v)
		case "Cookie":
			v = "[redacted]"
		}
		out[name] = v
	}
	return out
}

func redact(s string) string {
	if len(s) <= tokenLogPrefix {
		return s
	}
	return s[:tokenLogPrefix] + "..."
}

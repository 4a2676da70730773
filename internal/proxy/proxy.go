// Package proxy forwards requests the gateway does not serve itself to the
// backend that owns the path prefix.
package proxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"gateway-service/internal/logger"
	"gateway-service/internal/metrics"
)

type backend struct {
	prefix string
	proxy  *httputil.ReverseProxy
}

// Proxy matches the longest configured prefix and forwards the request with
// its path and query unchanged.
type Proxy struct {
	backends []backend
}

// New builds one reverse proxy per route. transport may be nil.
func New(routes []Route, transport http.RoundTripper) (*Proxy, error) {
	seen := make(map[string]bool, len(routes))
	p := &Proxy{}

	for _, r := range routes {
		target, err := r.validate()
		if err != nil {
			return nil, err
		}
		if seen[r.Prefix] {
			return nil, fmt.Errorf("proxy route %s listed twice", r.Prefix)
		}
		seen[r.Prefix] = true

		prefix := r.Prefix
		rp := &httputil.ReverseProxy{
			Rewrite: func(pr *httputil.ProxyRequest) {
				pr.SetURL(target)
				pr.SetXForwarded()
			},
			Transport: transport,
			ErrorHandler: func(w http.ResponseWriter, req *http.Request, err error) {
				upstreamFailed(w, req, prefix, err)
			},
		}
		p.backends = append(p.backends, backend{prefix: prefix, proxy: rp})
	}

	sort.SliceStable(p.backends, func(i, j int) bool {
		return len(p.backends[i].prefix) > len(p.backends[j].prefix)
	})
	return p, nil
}

func (p *Proxy) match(path string) (backend, bool) {
	for _, b := range p.backends {
		if strings.HasPrefix(path, b.prefix) {
			return b, true
		}
	}
	return backend{}, false
}

// Handler is meant for gin's NoRoute so the pipeline runs first.
func (p *Proxy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		b, ok := p.match(c.Request.URL.Path)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "not found",
			})
			return
		}

		logger.Debug("proxying request", map[string]any{
			"prefix": b.prefix,
			"path":   c.Request.URL.Path,
		})
		b.proxy.ServeHTTP(c.Writer, c.Request)
	}
}

func upstreamFailed(w http.ResponseWriter, req *http.Request, prefix string, err error) {
	if req.Context().Err() != nil {
		// client went away
		return
	}

	metrics.ProxyUpstreamErrorsTotal.WithLabelValues(prefix).Inc()
	logger.Error("proxy upstream failed", map[string]any{
		"prefix": prefix,
		"path":   req.URL.Path,
		"error":  err.Error(),
	})

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write([]byte(`{"success":false,"message":"upstream unavailable"}`))
}

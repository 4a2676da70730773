package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gateway-service/internal/logger"
	"gateway-service/internal/metrics"
)

const bearerPrefix = "Bearer "

// DefaultPublicPaths are path prefixes reachable without a bearer token.
var DefaultPublicPaths = []string{
	"/api/auth/",
	"/oauth2/",
	"/google/",
	"/kakao/",
	"/naver/",
	"/actuator/",
	"/health",
	"/api/ml/",
	"/api/titanic/",
	"/openapi.json",
	"/docs",
	"/redoc",
	"/nlp/",
	"/samsung/",
	"/us_map/",
	"/seoul_map/",
	"/swagger-ui/",
	"/v3/api-docs/",
}

// unexported, collision-proof context key
type bearerTokenContextKeyType struct{}

var bearerTokenKey = bearerTokenContextKeyType{}

// BearerTokenFromContext returns the raw bearer token admitted by the gate.
// The token has not been verified.
func BearerTokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(bearerTokenKey).(string)
	return t, ok
}

// AuthGate admits allow-listed paths and otherwise requires a syntactically
// present bearer token. Signature checks are left to downstream services.
type AuthGate struct {
	publicPaths []string
}

// NewAuthGate uses DefaultPublicPaths when publicPaths is empty.
func NewAuthGate(publicPaths []string) *AuthGate {
	if len(publicPaths) == 0 {
		publicPaths = DefaultPublicPaths
	}
	return &AuthGate{publicPaths: publicPaths}
}

func (g *AuthGate) IsPublic(path string) bool {
	for _, prefix := range g.publicPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *AuthGate) Intercept(c *gin.Context, next func()) {
	path := c.Request.URL.Path
	if g.IsPublic(path) {
		next()
		return
	}

	header := c.GetHeader("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

	var reason string
	switch {
	case header == "":
		reason = "missing"
	case !strings.HasPrefix(header, bearerPrefix) || token == "":
		reason = "malformed"
	}
	if reason != "" {
		metrics.AuthRejectedTotal.WithLabelValues(reason).Inc()
		logger.Warn("auth rejected", map[string]any{
			"path":   path,
			"reason": reason,
		})
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "authentication required",
		})
		return
	}

	logger.Debug("bearer token present", map[string]any{
		"path":         path,
		"token_prefix": redact(token),
	})

	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), bearerTokenKey, token))
	next()
}

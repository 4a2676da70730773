package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gateway-service/internal/auth"
	"gateway-service/internal/auth/provider"
	"gateway-service/internal/auth/token"
	"gateway-service/internal/logger"
)

type Handler struct {
	orchestrator *provider.Orchestrator
	issuer       *token.Issuer

	// frontends maps a provider to the browser app its callback returns to.
	frontends map[auth.Provider]string
}

func NewHandler(
	orchestrator *provider.Orchestrator,
	issuer *token.Issuer,
	frontends map[auth.Provider]string,
) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		issuer:       issuer,
		frontends:    frontends,
	}
}

// RegisterRoutes mounts /{provider}/start, /{provider}/callback and
// /{provider}/login for every registered provider, plus token verification.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	for _, name := range h.orchestrator.Providers() {
		g := r.Group("/" + name.String())
		g.GET("/start", h.start(name))
		g.GET("/callback", h.callback(name))
		g.POST("/login", h.login(name))
	}

	r.POST("/api/auth/verify", h.verify)
}

func (h *Handler) start(name auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		authURL, err := h.orchestrator.AuthCodeURL(name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to build " + name.String() + " auth url: " + err.Error(),
			})
			return
		}

		logger.Info("oauth start", map[string]any{
			"provider": name.String(),
		})

		c.JSON(http.StatusOK, gin.H{
			"authUrl": authURL,
			"message": name.String() + " auth url created",
		})
	}
}

func (h *Handler) verify(c *gin.Context) {
	raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if raw == "" {
		var body struct {
			Token string `json:"token"`
		}
		// An empty body falls through to "token is required".
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{
				"valid":   false,
				"message": "invalid request body",
			})
			return
		}
		raw = body.Token
	}
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid":   false,
			"message": "token is required",
		})
		return
	}

	claims, err := h.issuer.Verify(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"valid":   false,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":     true,
		"userId":    claims.UserID,
		"email":     claims.Email,
		"nickname":  claims.DisplayName,
		"type":      claims.Type,
		"expiresAt": claims.ExpiresAt.Unix(),
	})
}

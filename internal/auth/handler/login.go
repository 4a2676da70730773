package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"gateway-service/internal/auth"
	"gateway-service/internal/auth/provider"
	"gateway-service/internal/logger"
)

var errCredentialRequired = errors.New("authorization code or access token is required")

type loginRequest struct {
	AuthorizationCode string `json:"authorizationCode"`
	AccessToken       string `json:"accessToken"`
	State             string `json:"state"`
}

type loginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	Success      bool       `json:"success"`
	Message      string     `json:"message"`
	User         *loginUser `json:"user,omitempty"`
	Token        string     `json:"token,omitempty"`
	RefreshToken string     `json:"refreshToken,omitempty"`
}

// authenticate resolves the request to a provider identity and mints the
// gateway's own token pair for it.
func (h *Handler) authenticate(ctx context.Context, name auth.Provider, req loginRequest) (*loginResponse, error) {
	var (
		id  *auth.Identity
		err error
	)
	switch {
	case req.AuthorizationCode != "":
		id, err = h.orchestrator.LoginWithCode(ctx, name, req.AuthorizationCode, provider.ExchangeParams{
			State: req.State,
		})
	case req.AccessToken != "":
		id, err = h.orchestrator.LoginWithAccessToken(ctx, name, req.AccessToken)
	default:
		return nil, errCredentialRequired
	}
	if err != nil {
		return nil, err
	}

	subject := auth.SubjectFor(id.ExternalID)

	access, err := h.issuer.MintAccess(subject, id.Email, id.DisplayName)
	if err != nil {
		return nil, err
	}
	refresh, err := h.issuer.MintRefresh(subject)
	if err != nil {
		return nil, err
	}

	logger.Info("login succeeded", map[string]any{
		"provider": name.String(),
		"user_id":  id.UserID(),
	})

	return &loginResponse{
		Success: true,
		Message: name.String() + " login succeeded",
		User: &loginUser{
			ID:    id.UserID(),
			Email: id.Email,
			Name:  id.DisplayName,
		},
		Token:        access,
		RefreshToken: refresh,
	}, nil
}

func (h *Handler) login(name auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, loginResponse{
				Message: "invalid request body",
			})
			return
		}

		resp, err := h.authenticate(c.Request.Context(), name, req)
		if errors.Is(err, errCredentialRequired) {
			c.JSON(http.StatusBadRequest, loginResponse{
				Message: err.Error(),
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, loginResponse{
				Message: fmt.Sprintf("%s login failed: %s", name, err),
			})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// callback finishes the browser flow by redirecting to the frontend with the
// token pair, or with an error message.
func (h *Handler) callback(name auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		frontend := h.frontends[name]

		if errParam := c.Query("error"); errParam != "" {
			msg := c.Query("error_description")
			if msg == "" {
				msg = errParam
			}
			logger.Warn("oauth callback returned error", map[string]any{
				"provider": name.String(),
				"error":    errParam,
				"desc":     msg,
			})
			c.Redirect(http.StatusFound, errorRedirect(frontend, msg))
			return
		}

		code := c.Query("code")
		if code == "" {
			c.Redirect(http.StatusFound, errorRedirect(frontend, "authorization code is required"))
			return
		}

		resp, err := h.authenticate(c.Request.Context(), name, loginRequest{
			AuthorizationCode: code,
			State:             c.Query("state"),
		})
		if err != nil {
			c.Redirect(http.StatusFound, errorRedirect(frontend, fmt.Sprintf("%s login failed: %s", name, err)))
			return
		}

		c.Redirect(http.StatusFound, frontend+"/home?token="+url.QueryEscape(resp.Token)+
			"&refreshToken="+url.QueryEscape(resp.RefreshToken)+
			"&success=true")
	}
}

func errorRedirect(frontend, msg string) string {
	return frontend + "?error=" + url.QueryEscape(msg)
}

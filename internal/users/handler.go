package users

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"gateway-service/internal/auth"
	"gateway-service/internal/logger"
)

// envelope is the users API response shape.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names in validation errors.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{service: service, validate: v}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/v1/users")
	g.POST("/social-login", h.socialLogin)
	g.GET("/health", h.health)
	g.GET("/email/:email", h.getByEmail)
	g.GET("/social/:provider/:providerId", h.getBySocial)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PATCH("/:id/deactivate", h.deactivate)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) socialLogin(c *gin.Context) {
	var req SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}

	fields := h.fieldErrors(req)
	provider, err := auth.ParseProvider(req.Provider)
	if err != nil && req.Provider != "" {
		fields["provider"] = "unsupported provider"
	}
	if len(fields) > 0 {
		logger.Warn("validation failed", map[string]any{"fields": fields})
		c.JSON(http.StatusBadRequest, envelope{
			Message: "validation failed",
			Data:    fields,
		})
		return
	}

	u, err := h.service.SocialLogin(c.Request.Context(), provider, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "social login succeeded", Data: toResponse(u)})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: toResponse(u)})
}

func (h *Handler) getByEmail(c *gin.Context) {
	u, err := h.service.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: toResponse(u)})
}

func (h *Handler) getBySocial(c *gin.Context) {
	provider, err := auth.ParseProvider(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: err.Error()})
		return
	}
	u, err := h.service.GetBySocial(c.Request.Context(), provider, c.Param("providerId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: toResponse(u)})
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]Response, 0, len(list))
	for i := range list {
		out = append(out, toResponse(&list[i]))
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: out})
}

func (h *Handler) deactivate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "user deactivated"})
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Message: "user deleted"})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: "User Service is running"})
}

func (h *Handler) fieldErrors(req SocialLoginRequest) map[string]string {
	fields := map[string]string{}

	err := h.validate.Struct(req)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = fe.Field() + " is required"
		case "email":
			fields[fe.Field()] = "must be a valid email address"
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return fields
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, envelope{Message: err.Error()})
	case errors.Is(err, ErrDuplicateUser):
		c.JSON(http.StatusConflict, envelope{Message: err.Error()})
	default:
		logger.Error("users request failed", map[string]any{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, envelope{Message: "server error"})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: "invalid user id"})
		return 0, false
	}
	return id, true
}

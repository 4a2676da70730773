package facade

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gateway-service/internal/logger"
)

type Handler struct {
	aggregator *Aggregator
	topology   Topology
}

func NewHandler(aggregator *Aggregator, topology Topology) *Handler {
	return &Handler{
		aggregator: aggregator,
		topology:   topology,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/facade")
	g.GET("/dashboard", h.dashboard)
	g.GET("/health", h.health)
}

func (h *Handler) dashboard(c *gin.Context) {
	logger.Info("facade dashboard requested", nil)

	calls := make([]Call, 0, len(h.topology.Dashboard))
	for _, b := range h.topology.Dashboard {
		calls = append(calls, Call{Name: b.Name, URL: b.URL})
	}

	res, err := h.aggregator.Aggregate(c.Request.Context(), calls)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "dashboard information unavailable",
		})
		return
	}

	body := gin.H{}
	for name, doc := range res.Documents {
		body[name] = doc
	}
	body["timestamp"] = res.Timestamp.UnixMilli()

	c.JSON(http.StatusOK, body)
}

func (h *Handler) health(c *gin.Context) {
	logger.Info("facade health requested", nil)

	calls := make([]Call, 0, len(h.topology.Health))
	for _, b := range h.topology.Health {
		calls = append(calls, Call{
			Name: b.Name,
			URL:  b.URL,
			Fallback: map[string]any{
				"status":  "DOWN",
				"service": b.Name,
			},
		})
	}

	res, err := h.aggregator.Aggregate(c.Request.Context(), calls)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "health information unavailable",
		})
		return
	}

	body := gin.H{}
	for name, doc := range res.Documents {
		body[name] = doc
	}
	body["gateway"] = gin.H{"status": "UP"}

	c.JSON(http.StatusOK, body)
}

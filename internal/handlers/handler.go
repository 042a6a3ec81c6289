package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mqttdash/internal/dashboard"
	"mqttdash/internal/logger"
)

// Handler wires the HTTP layer to the dashboard.
type Handler struct {
	store   *dashboard.Store
	hub     *Hub
	metrics http.Handler
	log     logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies. metrics may be nil.
func NewHandler(store *dashboard.Store, hub *Hub, metrics http.Handler, log logger.Logger) *Handler {
	return &Handler{store: store, hub: hub, metrics: metrics, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	api := router.Group("/api/v1")
	{
		api.GET("/rows", h.getRows)
	}

	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getRows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"header": h.hub.header,
		"rows":   h.store.Render(),
	})
}

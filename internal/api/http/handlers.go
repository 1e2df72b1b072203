package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentSandbox/internal/domain/capability"
	"github.com/GriffinCanCode/AgentSandbox/internal/domain/sandbox"
	"github.com/GriffinCanCode/AgentSandbox/internal/infrastructure/logging"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	service  *sandbox.Service
	registry *capability.Registry
	log      *logging.Logger
	started  time.Time
}

// NewHandlers creates a new handler set.
func NewHandlers(service *sandbox.Service, registry *capability.Registry, log *logging.Logger) *Handlers {
	return &Handlers{
		service:  service,
		registry: registry,
		log:      log,
		started:  time.Now(),
	}
}

// ExecuteRequest is the body of POST /v1/execute. A nil capability list
// grants every registered capability; an empty list grants none.
type ExecuteRequest struct {
	Code         string    `json:"code" binding:"required"`
	TimeoutMs    int64     `json:"timeout_ms"`
	Capabilities *[]string `json:"capabilities"`
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "agent-sandbox",
		"version": "0.1.0",
	})
}

// Health handles detailed health check.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"uptime":       time.Since(h.started).String(),
		"runs":         h.service.Stats(),
		"capabilities": h.registry.Names(),
	})
}

// ListCapabilities lists the registered capability surface.
func (h *Handlers) ListCapabilities(c *gin.Context) {
	handles := h.registry.All()
	out := make([]gin.H, 0, len(handles))
	for _, name := range h.registry.Names() {
		out = append(out, gin.H{
			"name":        name,
			"description": handles[name].Description,
		})
	}
	c.JSON(http.StatusOK, gin.H{"capabilities": out})
}

// Execute runs submitted code in a fresh sandbox. Run failures are reported
// inside the result body, never as an HTTP error; only malformed requests get
// a 4xx.
func (h *Handlers) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	var (
		caps map[string]capability.Handle
		err  error
	)
	if req.Capabilities == nil {
		caps = h.registry.All()
	} else {
		caps, err = h.registry.Select(*req.Capabilities)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	timeout := time.Duration(req.TimeoutMs) * time.Millisecond
	result := h.service.Run(c.Request.Context(), req.Code, caps, timeout)
	c.JSON(http.StatusOK, result)
}

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adkchat/relay"
)

// healthPingTimeout bounds the provider liveness probe so a hung upstream
// cannot stall the health endpoint.
const healthPingTimeout = 2 * time.Second

// handleHealth always answers 200; the body carries the component states.
// Degraded means the model service is reachable but no Kit extension is
// connected for tool execution.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	adkReady := s.provider.Ping(ctx) == nil
	kitConnected := s.bridge != nil && s.bridge.Connected()

	status := relay.StatusUnhealthy
	switch {
	case adkReady && kitConnected:
		status = relay.StatusHealthy
	case adkReady:
		status = relay.StatusDegraded
	}

	c.JSON(http.StatusOK, relay.HealthStatus{
		Status:       status,
		Version:      relay.Version,
		ADKReady:     adkReady,
		KitConnected: kitConnected,
		Timestamp:    time.Now().UTC(),
	})
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "adk-chat-relay",
		"version": relay.Version,
		"endpoints": gin.H{
			"chat":   "/api/v1/chat/stream",
			"health": "/api/v1/health",
			"tools":  "/ws/tools",
		},
	})
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ping": "pong"})
}

// Package server exposes the relay over HTTP: the NDJSON chat stream, the
// health and service-info endpoints, and the WebSocket bridge that Kit uses
// to offer its scene tools.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adkchat/relay"
	"github.com/adkchat/relay/config"
	"github.com/adkchat/relay/kitbridge"
	"github.com/adkchat/relay/tools"
)

// Server routes HTTP traffic to the provider, the tool registry, and the
// Kit bridge. Safe for concurrent use; one goroutine per request.
type Server struct {
	cfg      *config.Config
	provider relay.Provider
	registry *tools.Registry
	bridge   *kitbridge.Manager
	engine   *gin.Engine
}

// New builds a Server. registry and bridge may be nil when the tool
// subsystem is disabled. Callers set the gin mode before the first New;
// see cmd/relayd.
func New(cfg *config.Config, provider relay.Provider, registry *tools.Registry, bridge *kitbridge.Manager) *Server {
	s := &Server{
		cfg:      cfg,
		provider: provider,
		registry: registry,
		bridge:   bridge,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), cors(cfg.CORSOrigins))

	engine.GET("/", s.handleRoot)
	engine.GET("/ping", s.handlePing)
	engine.GET("/ws/tools", s.handleKitSocket)

	api := engine.Group("/api/v1")
	api.POST("/chat/stream", s.handleChatStream)
	api.GET("/health", s.handleHealth)
	api.GET("/tools", s.handleTools)

	s.engine = engine
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) toolsEnabled() bool {
	return s.cfg.EnableTools && s.registry != nil && s.registry.Len() > 0
}

func errorBody(msg string, err error) relay.ErrorResponse {
	resp := relay.ErrorResponse{Error: msg, Timestamp: time.Now().UTC()}
	if err != nil {
		resp.Detail = err.Error()
	}
	return resp
}

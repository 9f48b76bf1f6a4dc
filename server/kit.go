package server

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/adkchat/relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Kit connects from a local omni.kit process, not a browser.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleKitSocket upgrades the connection and hands it to the bridge, which
// holds it until Kit disconnects.
func (s *Server) handleKitSocket(c *gin.Context) {
	if s.bridge == nil {
		c.JSON(http.StatusServiceUnavailable, errorBody("tool bridge disabled", nil))
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("kitbridge.upgrade_failed")
		return
	}
	s.bridge.Serve(conn)
}

// handleTools lists the currently registered tool schemas.
func (s *Server) handleTools(c *gin.Context) {
	var schemas []relay.Tool
	if s.registry != nil {
		schemas = s.registry.Schemas()
	}
	c.JSON(http.StatusOK, gin.H{
		"enabled": s.cfg.EnableTools,
		"count":   len(schemas),
		"tools":   schemas,
	})
}

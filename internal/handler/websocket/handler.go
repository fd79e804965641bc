package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/chong-myung/collabcut-sub001/internal/hub"
)

// WebSocketHandler upgrades HTTP requests and hands new clients to the hub.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	hub      *hub.Hub
}

// NewWebSocketHandler creates a WebSocketHandler instance.
func NewWebSocketHandler(h *hub.Hub) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// TODO: restrict origins via config before exposing this publicly.
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return &WebSocketHandler{
		upgrader: upgrader,
		hub:      h,
	}
}

// HandleConnection serves GET /ws/projects/:projectId. Identity must arrive
// before the upgrade, as an X-User-ID header or user_id query parameter; a
// request without it is rejected at the HTTP layer, never as an error
// envelope. An optional sequence_id query parameter seeds the client's
// active sequence.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	projectID := c.Param("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project ID is required"})
		return
	}

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		userID = c.Query("user_id")
	}
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity is required"})
		return
	}

	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"project_id": projectID,
	})

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logCtx.WithError(err).Error("Failed to upgrade connection")
		return
	}
	logCtx.Info("Connection upgraded to WebSocket")

	client := hub.NewClient(h.hub, conn, userID, projectID, c.Query("sequence_id"))

	if !h.hub.QueueRegister(client) {
		logCtx.Error("Hub register queue full, closing connection")
		client.CloseConn()
		return
	}

	client.Run()
}

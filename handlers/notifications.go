package handlers

import (
	"net/http"

	"autocare/middleware"
	"autocare/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	Hub      *notification.Hub
	Upgrader websocket.Upgrader
}

func NewNotificationHandler(hub *notification.Hub) *NotificationHandler {
	return &NotificationHandler{
		Hub: hub,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Stream handles GET /notifications/ws and pushes the caller's toasts.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID := middleware.CurrentActor(c).UserID
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		getLogger(c).Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	h.Hub.Attach(conn, userID)
}

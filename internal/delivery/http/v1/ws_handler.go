package v1

import (
	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/realtime"
	"go-placement-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type RealtimeHandler struct {
	hub      *realtime.Hub
	rooms    realtime.RoomAuthorizer
	upgrader *websocket.Upgrader
}

// NewRealtimeHandler registers the websocket endpoint. The route must sit
// behind AuthMiddleware; browsers pass the token as ?token= on upgrade.
func NewRealtimeHandler(protected *gin.RouterGroup, hub *realtime.Hub, rooms realtime.RoomAuthorizer, allowedOrigins []string) {
	handler := &RealtimeHandler{
		hub:      hub,
		rooms:    rooms,
		upgrader: realtime.NewUpgrader(allowedOrigins),
	}
	protected.GET("/ws", handler.Connect)
}

// Connect godoc
// @Summary      Open a realtime session
// @Description  Upgrades to a websocket. Client frames: join_chat, leave_chat, ping. Server frames: notification, message, pong, error.
// @Tags         realtime
// @Param        token  query  string  false  "Access token when headers cannot be set"
// @Success      101
// @Failure      401  {object}  response.Response
// @Router       /ws [get]
// @Security     BearerAuth
func (h *RealtimeHandler) Connect(c *gin.Context) {
	userID := middleware.CurrentPrincipal(c).ID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logger.Log.Warn("Websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	realtime.NewClient(conn, h.hub, h.rooms, userID).Serve(c.Request.Context())
}

package controllers

import (
	"net/http"

	"filevault/realtime"
	"filevault/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set Authorization headers on websocket dials,
	// so the token travels as a query parameter and origin checking
	// is left to the CORS layer in front.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type RealtimeController struct {
	hub *realtime.Hub
}

func NewRealtimeController(hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{hub: hub}
}

// Connect upgrades to a websocket and attaches the user to the hub.
// The token is taken from the query string.
func (rc *RealtimeController) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.UnauthorizedResponse(c, "Authentication token required")
		return
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		utils.UnauthorizedResponse(c, "Invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := realtime.NewClient(rc.hub, conn, claims.UserID, claims.Name, claims.Email)
	rc.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// OnlineUsers reports who is connected right now.
func (rc *RealtimeController) OnlineUsers(c *gin.Context) {
	if _, exists := utils.GetUserFromContext(c); !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	utils.SuccessResponse(c, "Online users retrieved successfully", gin.H{
		"users":   rc.hub.OnlineUsers(),
		"editing": rc.hub.EditingSessions(),
	})
}

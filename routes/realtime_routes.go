package routes

import (
	"filevault/controllers"
	"filevault/middleware"
	"filevault/realtime"

	"github.com/gin-gonic/gin"
)

func setupRealtimeRoutes(router *gin.Engine, api *gin.RouterGroup, hub *realtime.Hub) {
	realtimeController := controllers.NewRealtimeController(hub)

	// The websocket endpoint authenticates via query token inside the
	// handler, so it sits outside the auth middleware.
	router.GET("/ws", realtimeController.Connect)

	presence := api.Group("/presence")
	presence.Use(middleware.AuthMiddleware())
	{
		presence.GET("/online", realtimeController.OnlineUsers)
	}
}

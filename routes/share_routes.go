package routes

import (
	"filevault/controllers"
	"filevault/middleware"
	"filevault/realtime"

	"github.com/gin-gonic/gin"
)

func setupShareRoutes(api *gin.RouterGroup, hub *realtime.Hub) {
	shareController := controllers.NewShareController(hub)

	shares := api.Group("/shares")
	shares.Use(middleware.AuthMiddleware())
	{
		shares.POST("", shareController.Share)
		shares.DELETE("", shareController.RemovePermission)
		shares.GET("/permissions", shareController.GetPermissions)
		shares.GET("/with-me", shareController.SharedWithMe)
		shares.GET("/by-me", shareController.SharedByMe)
	}
}

package routes

import (
	"filevault/controllers"
	"filevault/middleware"

	"github.com/gin-gonic/gin"
)

func setupAuthRoutes(api *gin.RouterGroup) {
	authController := controllers.NewAuthController()

	auth := api.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware())
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", middleware.AuthMiddleware(), authController.Me)
	}
}

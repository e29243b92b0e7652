package routes

import (
	"filevault/controllers"
	"filevault/middleware"

	"github.com/gin-gonic/gin"
)

func setupFileRoutes(api *gin.RouterGroup) {
	fileController := controllers.NewFileController()
	versionController := controllers.NewVersionController()
	bulkController := controllers.NewBulkController()

	files := api.Group("/files")
	files.Use(middleware.AuthMiddleware())
	{
		files.GET("", fileController.GetFiles)
		files.POST("/upload", middleware.UploadRateLimitMiddleware(), fileController.Upload)
		files.GET("/search", fileController.Search)
		files.GET("/:id/download", fileController.Download)
		files.GET("/:id/preview", fileController.Preview)
		files.PATCH("/:id/rename", fileController.Rename)
		files.DELETE("/:id", fileController.Delete)

		files.POST("/:id/versions", middleware.UploadRateLimitMiddleware(), versionController.Push)
		files.GET("/:id/versions", versionController.History)
		files.POST("/:id/versions/:version/restore", versionController.Restore)
		files.GET("/:id/versions/:version/download", versionController.Download)
	}

	bulk := api.Group("/bulk")
	bulk.Use(middleware.AuthMiddleware())
	{
		bulk.POST("", bulkController.Execute)
	}
}

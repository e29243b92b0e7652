package routes

import (
	"filevault/controllers"
	"filevault/middleware"

	"github.com/gin-gonic/gin"
)

func setupFolderRoutes(api *gin.RouterGroup) {
	folderController := controllers.NewFolderController()

	folders := api.Group("/folders")
	folders.Use(middleware.AuthMiddleware())
	{
		folders.GET("", folderController.GetFolders)
		folders.POST("", folderController.CreateFolder)
		folders.GET("/:id/contents", folderController.GetContents)
		folders.GET("/:id/breadcrumb", folderController.GetBreadcrumb)
		folders.PATCH("/:id/rename", folderController.RenameFolder)
		folders.PATCH("/:id/move", folderController.MoveFolder)
		folders.DELETE("/:id", folderController.DeleteFolder)
	}
}

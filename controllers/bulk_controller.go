package controllers

import (
	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
)

type BulkController struct {
	bulkService *services.BulkService
}

func NewBulkController() *BulkController {
	return &BulkController{
		bulkService: services.NewBulkService(),
	}
}

// Execute runs a delete, move, or download-set action over a mixed
// selection of files and folders.
func (bc *BulkController) Execute(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	var req models.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format")
		return
	}

	result, err := bc.bulkService.Execute(user.ID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Bulk action completed", result)
}

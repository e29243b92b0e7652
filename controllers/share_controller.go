package controllers

import (
	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
)

type ShareController struct {
	shareService *services.ShareService
}

func NewShareController(notifier services.Notifier) *ShareController {
	return &ShareController{
		shareService: services.NewShareService(notifier),
	}
}

// Share grants or updates a permission on a file or folder.
func (sc *ShareController) Share(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	var req models.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	info, err := sc.shareService.Share(user, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Resource shared successfully", info)
}

// GetPermissions lists the owner and every grantee of a resource.
func (sc *ShareController) GetPermissions(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	resourceType := c.Query("resource_type")
	resourceID := c.Query("resource_id")
	if !utils.IsValidObjectID(resourceID) {
		utils.BadRequestResponse(c, "Invalid resource ID")
		return
	}

	entries, err := sc.shareService.ListPermissions(user, resourceType, utils.MustObjectID(resourceID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Permissions retrieved successfully", entries)
}

// SharedWithMe lists everything other users have shared with the
// caller.
func (sc *ShareController) SharedWithMe(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	listing, err := sc.shareService.ListSharedWithMe(user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Shared resources retrieved successfully", listing)
}

// SharedByMe lists the caller's resources that have grantees.
func (sc *ShareController) SharedByMe(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	listing, err := sc.shareService.ListSharedByMe(user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Shared resources retrieved successfully", listing)
}

// RemovePermission revokes a grantee's access.
func (sc *ShareController) RemovePermission(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	var req models.RemovePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	if err := sc.shareService.RemovePermission(user, &req); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Permission removed successfully", nil)
}

package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
)

type VersionController struct {
	versionService *services.VersionService
}

func NewVersionController() *VersionController {
	return &VersionController{
		versionService: services.NewVersionService(),
	}
}

// Push uploads new content as the live state and snapshots the
// previous one.
func (vc *VersionController) Push(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	fileID := c.Param("id")
	if !utils.IsValidObjectID(fileID) {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file provided")
		return
	}

	remark := c.PostForm("remark")

	result, err := vc.versionService.PushVersion(user.ID, utils.MustObjectID(fileID), fileHeader, remark)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "New version saved successfully", result)
}

// History lists a file's snapshots, newest first.
func (vc *VersionController) History(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	fileID := c.Param("id")
	if !utils.IsValidObjectID(fileID) {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	history, err := vc.versionService.GetHistory(user.ID, utils.MustObjectID(fileID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Version history retrieved successfully", history)
}

// Restore makes an old snapshot live again.
func (vc *VersionController) Restore(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	fileID := c.Param("id")
	if !utils.IsValidObjectID(fileID) {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	versionNumber, err := strconv.Atoi(c.Param("version"))
	if err != nil || versionNumber < 1 {
		utils.BadRequestResponse(c, "Invalid version number")
		return
	}

	result, err := vc.versionService.RestoreVersion(user.ID, utils.MustObjectID(fileID), versionNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Version restored successfully", result)
}

// Download streams the content of one snapshot.
func (vc *VersionController) Download(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	fileID := c.Param("id")
	if !utils.IsValidObjectID(fileID) {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	versionNumber, err := strconv.Atoi(c.Param("version"))
	if err != nil || versionNumber < 1 {
		utils.BadRequestResponse(c, "Invalid version number")
		return
	}

	data, version, err := vc.versionService.DownloadVersion(user.ID, utils.MustObjectID(fileID), versionNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, version.Filename))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

package controllers

import (
	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
)

type FolderController struct {
	folderService *services.FolderService
	fileService   *services.FileService
}

func NewFolderController() *FolderController {
	return &FolderController{
		folderService: services.NewFolderService(),
		fileService:   services.NewFileService(),
	}
}

// GetFolders lists the user's folders under a parent.
func (fc *FolderController) GetFolders(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	folders, err := fc.folderService.ListFolders(user.ID, c.Query("parent_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Folders retrieved successfully", folders)
}

// GetContents returns a folder's subfolders and files together, the
// shape a file browser pane consumes.
func (fc *FolderController) GetContents(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	folderID := c.Param("id")

	folders, err := fc.folderService.ListFolders(user.ID, folderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	files, err := fc.fileService.ListFiles(user.ID, folderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Folder contents retrieved successfully", gin.H{
		"folders": folders,
		"files":   files,
	})
}

// CreateFolder creates a folder under an optional parent.
func (fc *FolderController) CreateFolder(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	var req models.FolderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	folder, err := fc.folderService.CreateFolder(user.ID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Folder created successfully", folder)
}

// RenameFolder renames a folder in place.
func (fc *FolderController) RenameFolder(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	folderID := c.Param("id")
	if !utils.IsValidObjectID(folderID) {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	var req models.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	folder, err := fc.folderService.RenameFolder(user.ID, utils.MustObjectID(folderID), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Folder renamed successfully", folder)
}

// MoveFolder reparents a folder; target "root" detaches it.
func (fc *FolderController) MoveFolder(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	folderID := c.Param("id")
	if !utils.IsValidObjectID(folderID) {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	var req struct {
		TargetFolder string `json:"target_folder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format")
		return
	}

	if err := fc.folderService.MoveFolder(user.ID, utils.MustObjectID(folderID), req.TargetFolder); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Folder moved successfully", nil)
}

// DeleteFolder removes a folder and everything inside it.
func (fc *FolderController) DeleteFolder(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	folderID := c.Param("id")
	if !utils.IsValidObjectID(folderID) {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	summary, err := fc.folderService.DeleteFolder(user.ID, utils.MustObjectID(folderID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Folder deleted successfully", summary)
}

// GetBreadcrumb returns the ancestor chain from root to the folder.
func (fc *FolderController) GetBreadcrumb(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	folderID := c.Param("id")
	if !utils.IsValidObjectID(folderID) {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	breadcrumb, err := fc.folderService.Breadcrumb(user.ID, utils.MustObjectID(folderID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Breadcrumb retrieved successfully", breadcrumb)
}

package controllers

import (
	"fmt"
	"io"
	"strings"

	"filevault/models"
	"filevault/services"
	"filevault/utils"

	"github.com/gin-gonic/gin"
)

type FileController struct {
	fileService *services.FileService
}

func NewFileController() *FileController {
	return &FileController{
		fileService: services.NewFileService(),
	}
}

// Upload stores a new file, optionally into a folder.
func (fc *FileController) Upload(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file provided")
		return
	}

	folderID := c.PostForm("folder_id")

	file, err := fc.fileService.Upload(user.ID, fileHeader, folderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "File uploaded successfully", file)
}

// GetFiles lists the user's files in a folder ("root" or empty for
// unfiled uploads).
func (fc *FileController) GetFiles(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	files, err := fc.fileService.ListFiles(user.ID, c.Query("folder_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Files retrieved successfully", files)
}

// Download streams the live content as an attachment. View access is
// enough; grantees download what was shared with them.
func (fc *FileController) Download(c *gin.Context) {
	fc.streamFile(c, true)
}

// Preview streams the live content inline for in-browser rendering.
func (fc *FileController) Preview(c *gin.Context) {
	fc.streamFile(c, false)
}

func (fc *FileController) streamFile(c *gin.Context, attachment bool) {
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

	reader, file, err := fc.fileService.OpenDownload(user.ID, utils.MustObjectID(fileID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer reader.Close()

	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}

	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, file.OriginalName))
	c.Header("Content-Type", file.MimeType)
	c.Header("Content-Length", fmt.Sprintf("%d", file.Size))

	io.Copy(c.Writer, reader)
}

// Rename changes a file's display name.
func (fc *FileController) Rename(c *gin.Context) {
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

	var req models.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	file, err := fc.fileService.RenameFile(user.ID, utils.MustObjectID(fileID), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File renamed successfully", file)
}

// Delete removes a file and its stored content.
func (fc *FileController) Delete(c *gin.Context) {
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

	if err := fc.fileService.DeleteFile(user.ID, utils.MustObjectID(fileID)); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File deleted successfully", nil)
}

// Search matches the user's files by name.
func (fc *FileController) Search(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		utils.BadRequestResponse(c, "Search query is required")
		return
	}

	files, err := fc.fileService.SearchFiles(user.ID, query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Search completed", files)
}

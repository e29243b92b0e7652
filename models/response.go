package models

import "time"

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type Meta struct {
	Page       int `json:"page,omitempty"`
	Limit      int `json:"limit,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Resource type discriminators used by sharing and bulk endpoints.
const (
	ResourceTypeFile   = "file"
	ResourceTypeFolder = "folder"
)

type FolderCreateRequest struct {
	Name     string `json:"name" validate:"required,folder_name"`
	ParentID string `json:"parent_id,omitempty"`
}

type RenameRequest struct {
	Name string `json:"name" validate:"required,folder_name"`
}

type ShareRequest struct {
	ResourceID   string     `json:"resource_id" validate:"required"`
	ResourceType string     `json:"resource_type" validate:"required,oneof=file folder"`
	TargetEmail  string     `json:"target_email" validate:"required,email"`
	Permission   Permission `json:"permission" validate:"required,permission"`
}

type RemovePermissionRequest struct {
	ResourceID   string `json:"resource_id" validate:"required"`
	ResourceType string `json:"resource_type" validate:"required,oneof=file folder"`
	TargetEmail  string `json:"target_email" validate:"required,email"`
}

// SharedWithInfo is the payload returned from a successful share.
type SharedWithInfo struct {
	User         UserProfile `json:"user"`
	Permission   Permission  `json:"permission"`
	ResourceType string      `json:"resource_type"`
}

// PermissionEntry resolves one shared_with entry to a user identity.
// The owner appears first with Owner set; their permission field is
// left empty because ownership is not a grant.
type PermissionEntry struct {
	User       UserProfile `json:"user"`
	Permission Permission  `json:"permission,omitempty"`
	Owner      bool        `json:"owner,omitempty"`
}

// SharedFile and SharedFolder annotate a resource with the context the
// shared-with-me / shared-by-me listings need.
type SharedFile struct {
	File       *File        `json:"file"`
	Owner      UserProfile  `json:"owner"`
	Permission Permission   `json:"permission,omitempty"`
	SharedWith []SharedWith `json:"shared_with,omitempty"`
}

type SharedFolder struct {
	Folder     *Folder      `json:"folder"`
	Owner      UserProfile  `json:"owner"`
	Permission Permission   `json:"permission,omitempty"`
	SharedWith []SharedWith `json:"shared_with,omitempty"`
}

type SharedListing struct {
	Files   []SharedFile   `json:"files"`
	Folders []SharedFolder `json:"folders"`
}

// Bulk actions.
const (
	BulkActionDelete   = "delete"
	BulkActionMove     = "move"
	BulkActionDownload = "download"
)

type BulkActionRequest struct {
	Action       string   `json:"action" validate:"required"`
	Files        []string `json:"files"`
	Folders      []string `json:"folders"`
	TargetFolder string   `json:"target_folder,omitempty"`
}

type DeleteSummary struct {
	DeletedFiles   int `json:"deleted_files"`
	DeletedFolders int `json:"deleted_folders"`
}

type MoveSummary struct {
	MovedFiles   int `json:"moved_files"`
	MovedFolders int `json:"moved_folders"`
}

type DownloadItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
	Size        int64  `json:"size"`
	MimeType    string `json:"mimetype"`
}

type DownloadManifest struct {
	Files   []DownloadItem `json:"files"`
	Folders []string       `json:"folders"`
}

// Version endpoints.
type VersionPushRequest struct {
	Remark string `form:"remark"`
}

type VersionInfo struct {
	VersionNumber int    `json:"version_number"`
	Filename      string `json:"filename"`
	Remark        string `json:"remark"`
}

type VersionPushResult struct {
	File       *File       `json:"file"`
	NewVersion VersionInfo `json:"new_version"`
}

type VersionRestoreResult struct {
	File            *File       `json:"file"`
	RestoredVersion VersionInfo `json:"restored_version"`
}

type VersionHistory struct {
	Versions       []Version `json:"versions"`
	CurrentVersion int       `json:"current_version"`
}

package types

// CreateProjectRequest 创建项目请求，支持 JSON 与 multipart 表单.
type CreateProjectRequest struct {
	ProjectName string `form:"Project_name" json:"Project_name" rule:"required,notblank"`
	ProjectDesc string `form:"Project_desc" json:"Project_desc" rule:"required,notblank"`
	UserID      uint   `form:"User_ID"      json:"User_ID"      rule:"required"`
}

// CreateProjectResponse 创建项目结果.
type CreateProjectResponse struct {
	Message   string `json:"message"`
	ProjectID uint   `json:"projectId"`
}

// RenameProjectRequest 重命名项目请求.
type RenameProjectRequest struct {
	ProjectName string `form:"Project_name" json:"Project_name" rule:"required,notblank"`
}

// MessageResponse 仅包含提示信息的响应.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProjectItem 项目列表中的单个项目.
// File_path、File_type、File_size 为第一个文件的字段，没有文件时为 null.
type ProjectItem struct {
	ProjectID   uint       `json:"Project_ID"`
	ProjectName string     `json:"Project_name"`
	ProjectDesc string     `json:"Project_desc"`
	UserID      uint       `json:"User_ID"`
	FilePath    *string    `json:"File_path"`
	FileType    *string    `json:"File_type"`
	FileSize    *int64     `json:"File_size"`
	Files       []FileItem `json:"Files"`
}

// FileItem 项目下的文件，File_path 已改写为绝对 URL.
type FileItem struct {
	FileID    uint   `json:"File_ID"`
	ProjectID uint   `json:"Project_ID"`
	FileDesc  string `json:"File_desc"`
	FileType  string `json:"File_type"`
	FilePath  string `json:"File_path"`
	FileSize  int64  `json:"File_size"`
}

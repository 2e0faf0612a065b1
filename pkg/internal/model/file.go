package model

import "strings"

// 文件描述.
const (
	FileDescUploaded   = "Uploaded file"
	FileDescAdditional = "Additional file"
)

// 文件类型分类.
const (
	// FileTypeAudio 旧的创建流程写入的粗粒度类型.
	FileTypeAudio = "Audio"
	// FileTypeLyric 歌词文件的 MIME 类型.
	FileTypeLyric = "text/plain"
	// FileTypeAudioPrefix 音频 MIME 类型前缀.
	FileTypeAudioPrefix = "audio/"
)

// File 文件模型，Project_ID 不建外键约束.
type File struct {
	FileID    uint   `gorm:"column:File_ID;primaryKey;autoIncrement" json:"File_ID"`
	ProjectID uint   `gorm:"column:Project_ID;not null;index"        json:"Project_ID"`
	FileDesc  string `gorm:"column:File_desc;type:text"              json:"File_desc"`
	FileType  string `gorm:"column:File_type;size:255;index"         json:"File_type"`
	FilePath  string `gorm:"column:File_path;size:1024"              json:"File_path"`
	FileSize  int64  `gorm:"column:File_size"                        json:"File_size"`
}

// TableName 指定表名.
func (File) TableName() string {
	return "Files"
}

// IsAudio 判断文件是否属于音频分类.
func (f *File) IsAudio() bool {
	return f.FileType == FileTypeAudio || strings.HasPrefix(f.FileType, FileTypeAudioPrefix)
}

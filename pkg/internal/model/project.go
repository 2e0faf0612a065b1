// Package model 定义持久化到数据库的 GORM 模型，表名与列名沿用既有的 Projects/Files 表结构.
package model

// Project 项目模型，一个项目拥有零或多个文件.
type Project struct {
	ProjectID   uint   `gorm:"column:Project_ID;primaryKey;autoIncrement"  json:"Project_ID"`
	ProjectName string `gorm:"column:Project_name;size:255;not null"       json:"Project_name"`
	ProjectDesc string `gorm:"column:Project_desc;type:text;not null"      json:"Project_desc"`
	UserID      uint   `gorm:"column:User_ID;not null;index"               json:"User_ID"`
	Files       []File `gorm:"foreignKey:ProjectID;references:ProjectID" json:"Files,omitempty"`
}

// TableName 指定表名.
func (Project) TableName() string {
	return "Projects"
}

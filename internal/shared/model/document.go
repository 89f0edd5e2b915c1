// Package model 定义核心数据模型
//
// document.go 包含文档元数据模型定义：
//   - Document：上传文件的元数据记录
//   - FileType：文件粗分类枚举
package model

import "time"

// FileType 文件粗分类
//
// 由内容嗅探（而非扩展名）得出，上传中间件写入 context 后由 handler 持久化
type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeWord  FileType = "word"
	FileTypeImage FileType = "image"
)

// Document 文档元数据
//
// 通过 StudentID（学号）而非内部用户 ID 关联属主，
// 对象存储 key 为 <student_id>/<file_name>
type Document struct {
	ID            string    `json:"id" bson:"_id"`
	StudentID     string    `json:"student_id" bson:"student_id"` // 属主学号
	FileName      string    `json:"file_name" bson:"file_name"`   // 存储文件名（含时间戳前缀）
	FilePath      string    `json:"file_path" bson:"file_path"`   // 对象存储 key
	FileSize      int64     `json:"file_size" bson:"file_size"`   // 字节数
	FileType      FileType  `json:"file_type" bson:"file_type"`
	IsFavorite    bool      `json:"is_favorite" bson:"is_favorite"`
	DownloadCount int64     `json:"download_count" bson:"download_count"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

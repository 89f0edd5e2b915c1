// Package model 定义核心数据模型
//
// activitylog.go 包含审计日志模型定义：
//   - ActivityLog：只追加的用户行为记录
//   - Action：行为标签枚举
package model

import "time"

// Action 审计行为标签
type Action string

const (
	ActionRegister         Action = "register"
	ActionLogin            Action = "login"
	ActionAdminLogin       Action = "admin_login"
	ActionUploadDocument   Action = "upload_document"
	ActionDownloadDocument Action = "download_document"
	ActionDeleteDocument   Action = "delete_document"
	ActionToggleFavorite   Action = "toggle_favorite"
)

// ActivityLog 审计日志条目
//
// 只追加，正常流程永不修改或删除。IP 和位置在动作发生时捕获。
type ActivityLog struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"` // 内部用户 ID
	Action    Action    `json:"action" bson:"action"`
	IP        string    `json:"ip,omitempty" bson:"ip,omitempty"`
	Location  string    `json:"location,omitempty" bson:"location,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

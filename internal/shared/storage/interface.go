// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/
//   - 初始化时通过依赖注入传入实现
package storage

import (
	"context"

	"doclocker-admin/internal/shared/model"
)

// UserStore 用户存储接口
type UserStore interface {
	// CreateUser 创建用户；邮箱或学号冲突时返回 ErrDuplicate
	CreateUser(ctx context.Context, user *model.User) error

	// GetUserByID 按内部 ID 查找；不存在时返回 (nil, nil)
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// GetUserByIdentifier 按邮箱或学号查找（登录标识符）
	GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error)

	// GetUserByEmail 按邮箱查找
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// GetUserByEmailOrStudentID 注册重复性预检
	GetUserByEmailOrStudentID(ctx context.Context, email, studentID string) (*model.User, error)

	// UpdateUserLocation 刷新最近登录 IP 与解析位置
	UpdateUserLocation(ctx context.Context, id, ip, location string) error

	// UpdateUserDepartment 补写院系（admin 登录时为空则置 admin）
	UpdateUserDepartment(ctx context.Context, id, department string) error

	// AddUserStorage 累加已用存储字节数（delta 可为负，落地值不低于 0）
	AddUserStorage(ctx context.Context, id string, delta int64) error

	// ListUsers 列出全部用户
	ListUsers(ctx context.Context) ([]*model.User, error)

	// SampleUsers 按创建时间取最多 n 个用户（诊断用）
	SampleUsers(ctx context.Context, n int) ([]*model.User, error)

	// DeleteUser 删除用户记录；不存在时返回 ErrNotFound
	DeleteUser(ctx context.Context, id string) error
}

// DocumentStore 文档元数据存储接口
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *model.Document) error

	// GetDocument 按 ID 查找；不存在时返回 (nil, nil)
	GetDocument(ctx context.Context, id string) (*model.Document, error)

	// ListDocumentsByOwner 属主（学号）范围内列出
	ListDocumentsByOwner(ctx context.Context, studentID string) ([]*model.Document, error)

	// SearchDocumentsByOwner 属主范围内按文件名做大小写不敏感子串匹配
	SearchDocumentsByOwner(ctx context.Context, studentID, query string) ([]*model.Document, error)

	// ListAllDocuments 列出全部文档（管理端）
	ListAllDocuments(ctx context.Context) ([]*model.Document, error)

	// SetDocumentFavorite 写入收藏标记
	SetDocumentFavorite(ctx context.Context, id string, favorite bool) error

	// IncrementDownloadCount 下载计数 +1
	IncrementDownloadCount(ctx context.Context, id string) error

	// DeleteDocument 删除单个文档记录；不存在时返回 ErrNotFound
	DeleteDocument(ctx context.Context, id string) error

	// DeleteDocumentsByOwner 删除属主全部文档记录，返回删除条数（级联删除用）
	DeleteDocumentsByOwner(ctx context.Context, studentID string) (int64, error)
}

// ActivityLogStore 审计日志存储接口（只追加）
type ActivityLogStore interface {
	AppendActivity(ctx context.Context, entry *model.ActivityLog) error

	// ListActivityByUser 按用户查询，时间倒序
	ListActivityByUser(ctx context.Context, userID string) ([]*model.ActivityLog, error)

	// SampleActivity 取最新 n 条（诊断用），时间倒序
	SampleActivity(ctx context.Context, n int) ([]*model.ActivityLog, error)
}

// PersistentStore 持久化存储的完整接口
type PersistentStore interface {
	UserStore
	DocumentStore
	ActivityLogStore

	Close() error
}

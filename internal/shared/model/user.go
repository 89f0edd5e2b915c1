// Package model 定义核心数据模型
//
// user.go 包含用户相关的数据模型定义：
//   - User：用户（学生 / 管理员）
//   - UserRole：用户角色枚举
//   - Departments：院系枚举表
package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleAdmin   UserRole = "admin"
)

// Valid 角色是否合法
func (r UserRole) Valid() bool {
	return r == UserRoleStudent || r == UserRoleAdmin
}

// Departments 院系枚举表（注册时校验）
var Departments = map[string]bool{
	"botany":                    true,
	"chemistry":                 true,
	"electronics":               true,
	"english":                   true,
	"mathematics":               true,
	"microbiology":              true,
	"sports":                    true,
	"statistics":                true,
	"zoology":                   true,
	"animation-science":         true,
	"data-science":              true,
	"artificial-intelligence":   true,
	"bvoc-software-development": true,
	"bioinformatics":            true,
	"computer-application":      true,
	"computer-science-entire":   true,
	"computer-science-optional": true,
	"drug-chemistry":            true,
	"food-technology":           true,
	"forensic-science":          true,
	"nanoscience-and-technology": true,
	"admin":                     true,
}

// User 用户
//
// StudentID 是对外的稳定标识（学号），文档通过它关联属主；
// ID 是内部主键，JWT subject 使用内部 ID。
type User struct {
	ID           string   `json:"id" bson:"_id"`
	StudentID    string   `json:"student_id" bson:"student_id"` // 学号，唯一
	Email        string   `json:"email" bson:"email"`           // 邮箱，唯一
	Name         string   `json:"name" bson:"name"`
	Phone        string   `json:"phone" bson:"phone"`
	PasswordHash string   `json:"-" bson:"password_hash"` // never expose in JSON
	Department   string   `json:"department" bson:"department"`
	Role         UserRole `json:"role" bson:"role"`
	StorageUsed  int64    `json:"storage_used" bson:"storage_used"` // 已用存储（字节）
	PhotoPath    string   `json:"photo_path,omitempty" bson:"photo_path,omitempty"`
	LastIP       string   `json:"ip,omitempty" bson:"ip,omitempty"`             // 最近一次登录 IP
	LastLocation string   `json:"location,omitempty" bson:"location,omitempty"` // IP 解析出的位置

	// 登录失败计数字段：schema 预留，当前没有任何流程读写（无锁定逻辑）
	FailedLoginAttempts int        `json:"-" bson:"failed_login_attempts"`
	LastFailedLogin     *time.Time `json:"-" bson:"last_failed_login,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// PublicUser 对外暴露的用户字段投影（注册 / 登录响应）
type PublicUser struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	StudentID  string   `json:"student_id"`
	Department string   `json:"department,omitempty"`
	Role       UserRole `json:"role"`
	IP         string   `json:"ip,omitempty"`
	Location   string   `json:"location,omitempty"`
}

// Public 返回用户的公开投影
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		StudentID:  u.StudentID,
		Department: u.Department,
		Role:       u.Role,
		IP:         u.LastIP,
		Location:   u.LastLocation,
	}
}

// AdminUserView 管理端用户列表投影（固定字段，含 IP / 位置）
type AdminUserView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	StudentID   string   `json:"student_id"`
	Department  string   `json:"department"`
	Role        UserRole `json:"role"`
	StorageUsed int64    `json:"storage_used"`
	PhotoPath   string   `json:"photo_path,omitempty"`
	IP          string   `json:"ip,omitempty"`
	Location    string   `json:"location,omitempty"`
}

// AdminView 返回管理端投影
func (u *User) AdminView() AdminUserView {
	return AdminUserView{
		ID:          u.ID,
		Name:        u.Name,
		Phone:       u.Phone,
		Email:       u.Email,
		StudentID:   u.StudentID,
		Department:  u.Department,
		Role:        u.Role,
		StorageUsed: u.StorageUsed,
		PhotoPath:   u.PhotoPath,
		IP:          u.LastIP,
		Location:    u.LastLocation,
	}
}

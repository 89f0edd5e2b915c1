package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"doclocker-admin/internal/apiserver/audit"
	"doclocker-admin/internal/shared/alert"
	"doclocker-admin/internal/shared/model"
	"doclocker-admin/internal/shared/storage"
)

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	GetUserByEmailOrStudentID(ctx context.Context, email, studentID string) (*model.User, error)
	UpdateUserLocation(ctx context.Context, id, ip, location string) error
	UpdateUserDepartment(ctx context.Context, id, department string) error
}

// LocationResolver IP 归属地解析接口
type LocationResolver interface {
	Resolve(ctx context.Context, ip string) string
}

// Handler 认证 HTTP 处理器
type Handler struct {
	store    UserStore
	cfg      Config
	audit    *audit.Recorder
	geo      LocationResolver
	notifier alert.Notifier
	now      func() time.Time

	// 可选指标，nil 时不上报
	logins *prometheus.CounterVec
	alerts prometheus.Counter
}

// NewHandler 创建认证处理器
func NewHandler(store UserStore, cfg Config, recorder *audit.Recorder, geo LocationResolver, notifier alert.Notifier) *Handler {
	return &Handler{
		store:    store,
		cfg:      cfg,
		audit:    recorder,
		geo:      geo,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetMetrics 挂接登录与告警计数器
func (h *Handler) SetMetrics(logins *prometheus.CounterVec, alerts prometheus.Counter) {
	h.logins = logins
	h.alerts = alerts
}

// RegisterRoutes 注册认证相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/register", h.Register)
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/admin-login", h.AdminLogin)
	mux.HandleFunc("GET /api/v1/auth/me", h.Me)
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type registerRequest struct {
	StudentID  string `json:"student_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type authResponse struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

// ============================================================================
// Handlers
// ============================================================================

// Register 学生注册
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.StudentID == "" || req.Email == "" || req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "student_id, email, name, password are required")
		return
	}
	if !isValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if req.Department != "" && !model.Departments[req.Department] {
		writeError(w, http.StatusBadRequest, "unknown department")
		return
	}

	// 检查邮箱或学号是否已注册
	existing, err := h.store.GetUserByEmailOrStudentID(r.Context(), req.Email, req.StudentID)
	if err != nil {
		log.Printf("[auth.register] GetUserByEmailOrStudentID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusBadRequest, "email or student id already registered")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		log.Printf("[auth.register] HashPassword error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ip := ClientIP(r)
	location := h.geo.Resolve(r.Context(), ip)

	now := h.now()
	user := &model.User{
		ID:           generateID("usr"),
		StudentID:    req.StudentID,
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: hash,
		Department:   req.Department,
		Role:         model.UserRoleStudent,
		LastIP:       ip,
		LastLocation: location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "email or student id already registered")
			return
		}
		log.Printf("[auth.register] CreateUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := GenerateToken(h.cfg, user.ID, user.StudentID, string(user.Role))
	if err != nil {
		log.Printf("[auth.register] GenerateToken error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.audit.Record(user.ID, model.ActionRegister, ip, location)

	log.Printf("[auth] User registered: %s (%s)", user.Email, user.ID)
	writeJSON(w, http.StatusCreated, authResponse{User: user.Public(), Token: token})
}

// Login 学生登录
// identifier 可以是邮箱或学号
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, false)
}

// AdminLogin 管理员登录
// 与普通登录相同的凭证校验，但要求账号角色为 admin
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, true)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, adminOnly bool) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "identifier and password are required")
		return
	}

	user, err := h.store.GetUserByIdentifier(r.Context(), req.Identifier)
	if err != nil {
		log.Printf("[auth.login] GetUserByIdentifier error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || !CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if adminOnly && user.Role != model.UserRoleAdmin {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}
	if adminOnly && user.Department == "" {
		// 历史数据里管理员可能没有院系，补成 admin
		if err := h.store.UpdateUserDepartment(r.Context(), user.ID, "admin"); err != nil {
			log.Printf("[auth.login] UpdateUserDepartment error: %v", err)
		} else {
			user.Department = "admin"
		}
	}

	token, err := GenerateToken(h.cfg, user.ID, user.StudentID, string(user.Role))
	if err != nil {
		log.Printf("[auth.login] GenerateToken error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ip := ClientIP(r)
	location := h.geo.Resolve(r.Context(), ip)
	if err := h.store.UpdateUserLocation(r.Context(), user.ID, ip, location); err != nil {
		// 归属地更新失败不阻断登录
		log.Printf("[auth.login] UpdateUserLocation error: %v", err)
	}
	user.LastIP = ip
	user.LastLocation = location

	action := model.ActionLogin
	kind := "student"
	if adminOnly {
		action = model.ActionAdminLogin
		kind = "admin"
	}
	h.audit.Record(user.ID, action, ip, location)
	if h.logins != nil {
		h.logins.WithLabelValues(kind).Inc()
	}

	if t := h.now(); alert.OffHours(t) {
		subject := fmt.Sprintf("Off-hours login: %s", user.Email)
		body := fmt.Sprintf("User %s (%s) logged in at %s from %s (%s)",
			user.Name, user.Email, t.Format(time.RFC3339), ip, location)
		alert.Notify(h.notifier, subject, body)
		if h.alerts != nil {
			h.alerts.Inc()
		}
	}

	log.Printf("[auth] User logged in: %s from %s (%s)", user.Email, ip, location)
	writeJSON(w, http.StatusOK, authResponse{User: user.Public(), Token: token})
}

// Me 获取当前用户信息
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// ============================================================================
// Admin Bootstrap
// ============================================================================

// EnsureAdminUser 确保管理员用户存在（启动时调用）
// 如果配置了 adminEmail 且数据库中不存在该用户，则自动创建
func EnsureAdminUser(store UserStore, adminEmail, adminPassword string) error {
	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	ctx := context.Background()
	existing, err := store.GetUserByEmail(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		log.Printf("[auth] Admin user already exists: %s (%s)", adminEmail, existing.ID)
		return nil
	}

	hash, err := HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           generateID("usr"),
		StudentID:    "ADMIN-001",
		Email:        adminEmail,
		Name:         "Administrator",
		PasswordHash: hash,
		Department:   "admin",
		Role:         model.UserRoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("[auth] Created admin user: %s (%s)", adminEmail, user.ID)
	return nil
}

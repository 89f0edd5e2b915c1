// Package admin 管理端接口
//
// 所有路由都在 AdminOnly 之后，只有 admin 角色可达。
package admin

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"doclocker-admin/internal/apiserver/audit"
	"doclocker-admin/internal/apiserver/auth"
	"doclocker-admin/internal/shared/blobstore"
	"doclocker-admin/internal/shared/model"
	"doclocker-admin/internal/shared/storage"
)

const debugDumpLimit = 10

// Handler 管理端 HTTP 处理器
type Handler struct {
	store storage.PersistentStore
	blobs blobstore.Store
	audit *audit.Recorder
}

// NewHandler 创建管理端处理器
func NewHandler(store storage.PersistentStore, blobs blobstore.Store, recorder *audit.Recorder) *Handler {
	return &Handler{store: store, blobs: blobs, audit: recorder}
}

// RegisterRoutes 注册管理端路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/admin/users", auth.AdminOnly(h.ListUsers))
	mux.HandleFunc("GET /api/v1/admin/documents", auth.AdminOnly(h.ListDocuments))
	mux.HandleFunc("GET /api/v1/admin/users/{userId}/activity-logs", auth.AdminOnly(h.UserActivityLogs))
	mux.HandleFunc("DELETE /api/v1/admin/users/{userId}", auth.AdminOnly(h.DeleteUser))
	mux.HandleFunc("GET /api/v1/admin/debug-dump", auth.AdminOnly(h.DebugDump))
}

// ListUsers 用户列表（固定投影）
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[admin.users] ListUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]model.AdminUserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.AdminView())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": views, "total": len(views)})
}

// ListDocuments 全量文档列表
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.ListAllDocuments(r.Context())
	if err != nil {
		log.Printf("[admin.documents] ListAllDocuments error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "total": len(docs)})
}

// UserActivityLogs 单用户审计记录，时间倒序
func (h *Handler) UserActivityLogs(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	logs, err := h.audit.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[admin.activity] ListByUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs, "total": len(logs)})
}

// DeleteUser 级联删除用户
//
// 五步顺序执行，对象删除失败不回滚也不中止（尽力而为）：
//  1. 查用户，不存在则 404
//  2. 禁止删除自己
//  3. 枚举其全部文档
//  4. 逐个删对象（失败只记日志）
//  5. 删文档记录，最后删用户记录
//
// 中途失败可能留下部分完成的状态，没有补偿事务。
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return
	}

	target, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		log.Printf("[admin.delete] GetUserByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if target == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if actor := auth.GetUser(r.Context()); actor != nil && actor.ID == target.ID {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	docs, err := h.store.ListDocumentsByOwner(r.Context(), target.StudentID)
	if err != nil {
		log.Printf("[admin.delete] ListDocumentsByOwner error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	for _, doc := range docs {
		if err := h.blobs.Delete(r.Context(), doc.FilePath); err != nil {
			log.Printf("[admin.delete] blob Delete %s error: %v", doc.FilePath, err)
		}
	}
	// 目录级清理兜底，残留的孤儿对象一并带走
	if err := h.blobs.DeletePrefix(r.Context(), target.StudentID+"/"); err != nil {
		log.Printf("[admin.delete] DeletePrefix error: %v", err)
	}

	deleted, err := h.store.DeleteDocumentsByOwner(r.Context(), target.StudentID)
	if err != nil {
		log.Printf("[admin.delete] DeleteDocumentsByOwner error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete documents")
		return
	}

	if err := h.store.DeleteUser(r.Context(), target.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("[admin.delete] DeleteUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	log.Printf("[admin] Deleted user %s (%s), %d documents removed", target.Email, target.ID, deleted)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":           "user deleted",
		"documents_removed": deleted,
	})
}

// DebugDump 诊断转储：最多 10 个用户（姓名 / IP / 位置）+ 最新 10 条审计
//
// 照搬线上老接口的行为，会暴露用户 IP 和归属地，只给管理员用。
func (h *Handler) DebugDump(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.SampleUsers(r.Context(), debugDumpLimit)
	if err != nil {
		log.Printf("[admin.debug] SampleUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	logs, err := h.audit.Sample(r.Context(), debugDumpLimit)
	if err != nil {
		log.Printf("[admin.debug] Sample error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type userDump struct {
		Name     string `json:"name"`
		IP       string `json:"ip"`
		Location string `json:"location"`
	}
	dump := make([]userDump, 0, len(users))
	for _, u := range users {
		dump = append(dump, userDump{Name: u.Name, IP: u.LastIP, Location: u.LastLocation})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": dump,
		"logs":  logs,
	})
}

// ============================================================================
// 工具函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// 路由配置与中间件链
package server

import (
	"net/http"

	"doclocker-admin/internal/apiserver/admin"
	"doclocker-admin/internal/apiserver/auth"
	"doclocker-admin/internal/apiserver/document"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /health - 服务健康检查
//   - GET /metrics - Prometheus 指标
//
// 认证 (Auth):
//   - POST /api/v1/auth/register    - 学生注册
//   - POST /api/v1/auth/login       - 登录（邮箱或学号）
//   - POST /api/v1/auth/admin-login - 管理员登录
//   - GET  /api/v1/auth/me          - 当前用户
//
// 文档 (Document):
//   - POST   /api/v1/documents               - 上传
//   - GET    /api/v1/documents               - 列表
//   - GET    /api/v1/documents/search        - 搜索
//   - GET    /api/v1/documents/{id}          - 元数据（计下载）
//   - GET    /api/v1/documents/{id}/content  - 下载二进制
//   - DELETE /api/v1/documents/{id}          - 删除
//   - PATCH  /api/v1/documents/{id}/favorite - 收藏取反
//
// 管理端 (Admin，仅 admin 角色):
//   - GET    /api/v1/admin/users                         - 用户列表
//   - GET    /api/v1/admin/documents                     - 全量文档
//   - GET    /api/v1/admin/users/{userId}/activity-logs  - 审计记录
//   - DELETE /api/v1/admin/users/{userId}                - 级联删除
//   - GET    /api/v1/admin/debug-dump                    - 诊断转储
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// Auth 接口
	authHandler := auth.NewHandler(h.store, h.authCfg, h.audit, h.geo, h.notifier)
	authHandler.SetMetrics(h.metrics.LoginsTotal, h.metrics.AlertsSentTotal)
	authHandler.RegisterRoutes(mux)

	// Document 接口
	docHandler := document.NewHandler(h.store, h.blobs, h.audit, h.geo)
	docHandler.SetMetrics(h.metrics.UploadsTotal, h.metrics.UploadBytesTotal)
	docHandler.RegisterRoutes(mux)

	// Admin 接口（处理器级别再套 AdminOnly）
	adminHandler := admin.NewHandler(h.store, h.blobs, h.audit)
	adminHandler.RegisterRoutes(mux)

	// 中间件链：metrics → auth → CORS（外层）
	apiHandler := h.metrics.MetricsMiddleware(mux)
	authedHandler := auth.Middleware(h.authCfg, h.store)(apiHandler)
	return corsMiddleware(authedHandler)
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Package server 提供 HTTP API 的组装与核心基础设施
//
// 文件组织：
//   - common.go: Handler 定义和通用工具函数
//   - handler.go: 路由配置与中间件链
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"

	"doclocker-admin/internal/apiserver/audit"
	"doclocker-admin/internal/apiserver/auth"
	"doclocker-admin/internal/shared/alert"
	"doclocker-admin/internal/shared/blobstore"
	"doclocker-admin/internal/shared/storage"
)

// Handler API 组装器
//
// Handler 持有全部外部依赖，负责把请求路由到各领域独立包：
//   - auth: 注册 / 登录 / 令牌校验
//   - document: 文档上传下载
//   - admin: 管理端接口
type Handler struct {
	store    storage.PersistentStore // MongoDB 存储层（持久化业务数据）
	blobs    blobstore.Store         // 上传文件二进制存储
	geo      auth.LocationResolver   // IP 归属地解析
	notifier alert.Notifier          // 异常时段登录告警通道
	authCfg  auth.Config

	// 内部组件
	audit   *audit.Recorder // 审计日志记录器
	metrics *Metrics        // Prometheus 指标
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.PersistentStore, blobs blobstore.Store, geo auth.LocationResolver, notifier alert.Notifier, authCfg auth.Config) *Handler {
	h := &Handler{
		store:    store,
		blobs:    blobs,
		geo:      geo,
		notifier: notifier,
		authCfg:  authCfg,
	}
	h.metrics = NewMetrics("doclocker")
	h.audit = audit.NewRecorder(store, h.metrics.AuditWriteFailures)
	return h
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

// Shutdown 等待在途的审计写入落盘
func (h *Handler) Shutdown() {
	h.audit.Flush()
}

// writeJSON 将数据以 JSON 格式写入 HTTP 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Health 健康检查接口
//
// 路由: GET /health
//
// 用于负载均衡器和监控系统检查服务状态。
// 返回 {"status": "ok"} 表示服务正常运行。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

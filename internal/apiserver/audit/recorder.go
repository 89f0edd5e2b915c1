// Package audit 只追加的用户行为审计
//
// 写入是 fire-and-forget：失败只记日志并计数，绝不阻塞或拖垮主操作。
// 故障条件下"每个动作恰有一条审计"的约定会被打破，这是已知缺口，
// 通过失败计数指标让缺口可观测而不是无声丢失。
package audit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"doclocker-admin/internal/shared/model"
	"doclocker-admin/internal/shared/storage"
)

// 单条审计写入的超时上界（脱离请求 context，用独立超时）
const writeTimeout = 5 * time.Second

// Recorder 审计记录器
type Recorder struct {
	store    storage.ActivityLogStore
	failures prometheus.Counter // 可为 nil（未接指标时）
	wg       sync.WaitGroup
}

// NewRecorder 创建审计记录器；failures 计数器可为 nil
func NewRecorder(store storage.ActivityLogStore, failures prometheus.Counter) *Recorder {
	return &Recorder{store: store, failures: failures}
}

// Record 异步追加一条审计记录
//
// IP 和位置由调用方在动作发生时捕获后传入。写入脱离请求 context，
// 请求返回后日志落库仍会完成。
func (r *Recorder) Record(userID string, action model.Action, ip, location string) {
	entry := &model.ActivityLog{
		ID:        generateID(),
		UserID:    userID,
		Action:    action,
		IP:        ip,
		Location:  location,
		Timestamp: time.Now(),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := r.store.AppendActivity(ctx, entry); err != nil {
			log.Printf("[audit] append failed for user=%s action=%s: %v", userID, action, err)
			if r.failures != nil {
				r.failures.Inc()
			}
		}
	}()
}

// Flush 等待所有在途写入完成（优雅关闭 / 测试用）
func (r *Recorder) Flush() {
	r.wg.Wait()
}

// ListByUser 按用户查询审计记录，时间倒序（管理端）
func (r *Recorder) ListByUser(ctx context.Context, userID string) ([]*model.ActivityLog, error) {
	return r.store.ListActivityByUser(ctx, userID)
}

// Sample 取最新 n 条审计记录（诊断）
func (r *Recorder) Sample(ctx context.Context, n int) ([]*model.ActivityLog, error) {
	return r.store.SampleActivity(ctx, n)
}

// generateID 生成审计条目 ID
// 格式：alog-xxxxxxxxxxxx（12 字符 hex）
func generateID() string {
	b := make([]byte, 6)
	rand.Read(b)
	return "alog-" + hex.EncodeToString(b)
}

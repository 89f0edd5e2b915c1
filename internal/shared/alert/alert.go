// Package alert 异常登录时段的带外告警
//
// 同一个组件的两种部署形态，由配置选择：
//   - mail：SMTP 邮件
//   - webhook：HTTP POST（对接外部信号装置的桥接服务）
//
// 发送失败只记日志，绝不影响主请求。
package alert

import (
	"log"
	"time"
)

// 允许登录时段 [10:00, 17:00)，本地时间。窗口外的登录触发告警。
const (
	allowedStartHour = 10
	allowedEndHour   = 17
)

// OffHours 判断时刻是否落在允许时段之外
func OffHours(t time.Time) bool {
	hour := t.Hour()
	return hour < allowedStartHour || hour >= allowedEndHour
}

// Notifier 告警通道抽象
type Notifier interface {
	// Send 同步发送一条告警；调用方自行决定是否放到 goroutine 里
	Send(subject, body string) error
}

// Notify 异步发送，失败只记日志（调用方 fire-and-forget 的统一入口）
func Notify(n Notifier, subject, body string) {
	if n == nil {
		return
	}
	go func() {
		if err := n.Send(subject, body); err != nil {
			log.Printf("[alert] send failed: %v", err)
		}
	}()
}

// NopNotifier 空实现（告警未配置时使用）
type NopNotifier struct{}

func (NopNotifier) Send(_, _ string) error { return nil }

var _ Notifier = NopNotifier{}

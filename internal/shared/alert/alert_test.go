package alert

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestOffHours 允许时段 [10:00, 17:00)
func TestOffHours(t *testing.T) {
	tests := []struct {
		hour int
		want bool
	}{
		{0, true},
		{3, true},
		{9, true},
		{10, false},
		{13, false},
		{16, false},
		{17, true},
		{23, true},
	}

	for _, tt := range tests {
		at := time.Date(2026, 3, 1, tt.hour, 0, 0, 0, time.Local)
		if got := OffHours(at); got != tt.want {
			t.Errorf("OffHours(%02d:00) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

// TestWebhookNotifier_Send POST 正文结构与状态码处理
func TestWebhookNotifier_Send(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n, err := NewWebhookNotifier(srv.URL)
	if err != nil {
		t.Fatalf("NewWebhookNotifier: %v", err)
	}
	if err := n.Send("ALERT: off-hours login", "user a@x.edu at 03:00"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Subject != "ALERT: off-hours login" {
		t.Errorf("subject = %q", got.Subject)
	}
	if got.Body == "" {
		t.Error("body should not be empty")
	}
}

// TestWebhookNotifier_ErrorStatus 非 2xx 视为失败
func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	n, _ := NewWebhookNotifier(srv.URL)
	if err := n.Send("s", "b"); err == nil {
		t.Error("Send should fail on 502")
	}
}

// TestNotify_NilNotifier nil 通道直接忽略
func TestNotify_NilNotifier(t *testing.T) {
	Notify(nil, "s", "b") // 不应 panic
}

// TestNewMailNotifier_Validation 缺少必填项时报错
func TestNewMailNotifier_Validation(t *testing.T) {
	if _, err := NewMailNotifier(MailConfig{}); err == nil {
		t.Error("empty config should be rejected")
	}
	if _, err := NewMailNotifier(MailConfig{Host: "smtp.x", From: "a@x", To: "b@x"}); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

package audit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"doclocker-admin/internal/shared/model"
	"doclocker-admin/internal/shared/storage"
)

// failingLogStore 总是写入失败的 ActivityLogStore
type failingLogStore struct {
	mu    sync.Mutex
	calls int
}

func (s *failingLogStore) AppendActivity(context.Context, *model.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("disk on fire")
}

func (s *failingLogStore) ListActivityByUser(context.Context, string) ([]*model.ActivityLog, error) {
	return nil, nil
}

func (s *failingLogStore) SampleActivity(context.Context, int) ([]*model.ActivityLog, error) {
	return nil, nil
}

// TestRecord_AppendsExactlyOneEntry 每次 Record 恰好落一条记录
func TestRecord_AppendsExactlyOneEntry(t *testing.T) {
	store := storage.NewMemStore()
	r := NewRecorder(store, nil)

	r.Record("usr-1", model.ActionRegister, "127.0.0.1", "Localhost")
	r.Flush()

	entries, err := store.ListActivityByUser(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("ListActivityByUser: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Action != model.ActionRegister {
		t.Errorf("action = %q", e.Action)
	}
	if e.IP != "127.0.0.1" || e.Location != "Localhost" {
		t.Errorf("ip/location = %q/%q", e.IP, e.Location)
	}
	if !strings.HasPrefix(e.ID, "alog-") {
		t.Errorf("id = %q, want alog- prefix", e.ID)
	}
	if e.Timestamp.IsZero() {
		t.Error("timestamp must be set at creation")
	}
}

// TestRecord_FailureSwallowedAndCounted 写入失败不上抛，只计数
func TestRecord_FailureSwallowedAndCounted(t *testing.T) {
	store := &failingLogStore{}
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_audit_failures_total"})
	r := NewRecorder(store, counter)

	r.Record("usr-1", model.ActionLogin, "1.2.3.4", "Unknown")
	r.Record("usr-1", model.ActionUploadDocument, "1.2.3.4", "Unknown")
	r.Flush()

	if store.calls != 2 {
		t.Errorf("append attempts = %d, want 2", store.calls)
	}
	if got := testutil.ToFloat64(counter); got != 2 {
		t.Errorf("failure counter = %v, want 2", got)
	}
}

// TestListByUser_NewestFirst 查询走底层存储的倒序语义
func TestListByUser_NewestFirst(t *testing.T) {
	store := storage.NewMemStore()
	r := NewRecorder(store, nil)

	actions := []model.Action{model.ActionRegister, model.ActionLogin, model.ActionToggleFavorite}
	for _, a := range actions {
		r.Record("usr-1", a, "127.0.0.1", "Localhost")
		r.Flush() // 顺序写入，保证时间戳单调
	}

	entries, err := r.ListByUser(context.Background(), "usr-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Action != model.ActionToggleFavorite {
		t.Errorf("newest entry action = %q, want toggle_favorite", entries[0].Action)
	}
	if entries[2].Action != model.ActionRegister {
		t.Errorf("oldest entry action = %q, want register", entries[2].Action)
	}
}

package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLocalStore_PutGetDelete 基础读写删除
func TestLocalStore_PutGetDelete(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	content := []byte("hello locker")
	key := "CS001/1700000000-notes.pdf"

	if err := s.Put(ctx, key, bytes.NewReader(content), int64(len(content)), "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rc, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, content) {
		t.Errorf("Get content = %q, want %q", got, content)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, key); err == nil {
		t.Error("Get after Delete should fail")
	}

	// 删除不存在的对象不报错
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("Delete missing object: %v", err)
	}
}

// TestLocalStore_KeyLayout 对象 key 映射为 <root>/<studentID>/<fileName>
func TestLocalStore_KeyLayout(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStore(root)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	if err := s.Put(context.Background(), "CS001/a.pdf", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "CS001", "a.pdf")); err != nil {
		t.Errorf("expected file at <root>/CS001/a.pdf: %v", err)
	}
}

// TestLocalStore_RejectsTraversal 越出 root 的 key 被拒绝
func TestLocalStore_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"../escape", "..", "/etc/passwd", "a/../../b"} {
		if err := s.Put(ctx, key, strings.NewReader("x"), 1, ""); err == nil {
			t.Errorf("Put(%q) should be rejected", key)
		}
	}
}

// TestLocalStore_DeletePrefix 删除整个用户子树
func TestLocalStore_DeletePrefix(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"CS001/a.pdf", "CS001/b.png", "CS002/c.pdf"} {
		if err := s.Put(ctx, key, strings.NewReader("x"), 1, ""); err != nil {
			t.Fatalf("Put(%q): %v", key, err)
		}
	}

	if err := s.DeletePrefix(ctx, "CS001"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if _, err := s.Get(ctx, "CS001/a.pdf"); err == nil {
		t.Error("CS001/a.pdf should be gone")
	}
	if _, err := s.Get(ctx, "CS002/c.pdf"); err != nil {
		t.Errorf("CS002/c.pdf should survive: %v", err)
	}
}

// TestLocalStore_ShortWrite 声明大小与实际不符时报错并清理
func TestLocalStore_ShortWrite(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, "CS001/x.pdf", strings.NewReader("abc"), 10, ""); err == nil {
		t.Fatal("Put with mismatched size should fail")
	}
	if _, err := s.Get(ctx, "CS001/x.pdf"); err == nil {
		t.Error("partial object should have been removed")
	}
}

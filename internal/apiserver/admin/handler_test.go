package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"doclocker-admin/internal/apiserver/audit"
	"doclocker-admin/internal/apiserver/auth"
	"doclocker-admin/internal/shared/blobstore"
	"doclocker-admin/internal/shared/model"
	"doclocker-admin/internal/shared/storage"
)

func newTestHandler(t *testing.T) (*Handler, *storage.MemStore, *blobstore.LocalStore) {
	t.Helper()
	store := storage.NewMemStore()
	blobs, err := blobstore.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	h := NewHandler(store, blobs, audit.NewRecorder(store, nil))
	return h, store, blobs
}

func seedUser(t *testing.T, store *storage.MemStore, id, studentID string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		ID:           id,
		StudentID:    studentID,
		Email:        studentID + "@example.edu",
		Name:         "User " + studentID,
		Role:         role,
		LastIP:       "203.0.113.9",
		LastLocation: "Pune, India",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func seedDocument(t *testing.T, store *storage.MemStore, blobs *blobstore.LocalStore, studentID string, n int) *model.Document {
	t.Helper()
	content := []byte(fmt.Sprintf("%%PDF-1.4 test document %d", n))
	name := fmt.Sprintf("doc-%d.pdf", n)
	key := studentID + "/" + name
	if err := blobs.Put(context.Background(), key, bytes.NewReader(content), int64(len(content)), "application/pdf"); err != nil {
		t.Fatalf("blob Put: %v", err)
	}
	doc := &model.Document{
		ID:        fmt.Sprintf("doc-%s-%d", studentID, n),
		StudentID: studentID,
		FileName:  name,
		FilePath:  key,
		FileSize:  int64(len(content)),
		FileType:  model.FileTypePDF,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := store.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	return doc
}

func adminRequest(admin *model.User, method, path string) *http.Request {
	r := httptest.NewRequest(method, path, nil)
	r = r.WithContext(auth.WithUser(r.Context(), admin))
	return r
}

func TestListUsersProjection(t *testing.T) {
	h, store, _ := newTestHandler(t)
	admin := seedUser(t, store, "usr-a1", "ADMIN-001", model.UserRoleAdmin)
	seedUser(t, store, "usr-s1", "CS-2021-001", model.UserRoleStudent)

	w := httptest.NewRecorder()
	h.ListUsers(w, adminRequest(admin, "GET", "/api/v1/admin/users"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	// 投影字段齐全，且不包含密码散列
	for _, field := range []string{"name", "phone", "email", "student_id", "department", "role", "storage_used", "ip", "location"} {
		if !bytes.Contains(w.Body.Bytes(), []byte(`"`+field+`"`)) {
			t.Errorf("projection missing field %q: %s", field, w.Body.String())
		}
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Error("projection leaks password material")
	}

	var resp struct {
		Total int `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
}

func TestCascadeDeleteUser(t *testing.T) {
	h, store, blobs := newTestHandler(t)
	admin := seedUser(t, store, "usr-a1", "ADMIN-001", model.UserRoleAdmin)
	victim := seedUser(t, store, "usr-s1", "CS-2021-001", model.UserRoleStudent)

	docs := make([]*model.Document, 0, 3)
	for i := 1; i <= 3; i++ {
		docs = append(docs, seedDocument(t, store, blobs, victim.StudentID, i))
	}

	r := adminRequest(admin, "DELETE", "/api/v1/admin/users/"+victim.ID)
	r.SetPathValue("userId", victim.ID)
	w := httptest.NewRecorder()
	h.DeleteUser(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	// 三个文档的记录和对象都已删除
	for _, doc := range docs {
		if got, _ := store.GetDocument(context.Background(), doc.ID); got != nil {
			t.Errorf("document record %s still present", doc.ID)
		}
		if _, err := blobs.Get(context.Background(), doc.FilePath); err == nil {
			t.Errorf("blob %s still present", doc.FilePath)
		}
	}

	// 用户记录已删除，列表不再出现
	if got, _ := store.GetUserByID(context.Background(), victim.ID); got != nil {
		t.Error("user record still present")
	}
	users, _ := store.ListUsers(context.Background())
	for _, u := range users {
		if u.ID == victim.ID {
			t.Error("deleted user still in user list")
		}
	}
}

func TestDeleteUserSelfForbidden(t *testing.T) {
	h, store, _ := newTestHandler(t)
	admin := seedUser(t, store, "usr-a1", "ADMIN-001", model.UserRoleAdmin)

	r := adminRequest(admin, "DELETE", "/api/v1/admin/users/"+admin.ID)
	r.SetPathValue("userId", admin.ID)
	w := httptest.NewRecorder()
	h.DeleteUser(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if got, _ := store.GetUserByID(context.Background(), admin.ID); got == nil {
		t.Error("admin deleted own account")
	}
}

func TestDeleteUserNotFound(t *testing.T) {
	h, store, _ := newTestHandler(t)
	admin := seedUser(t, store, "usr-a1", "ADMIN-001", model.UserRoleAdmin)

	r := adminRequest(admin, "DELETE", "/api/v1/admin/users/usr-ghost")
	r.SetPathValue("userId", "usr-ghost")
	w := httptest.NewRecorder()
	h.DeleteUser(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUserActivityLogsNewestFirst(t *testing.T) {
	h, store, _ := newTestHandler(t)
	admin := seedUser(t, store, "usr-a1", "ADMIN-001", model.UserRoleAdmin)
	student := seedUser(t, store, "usr-s1", "CS-2021-001", model.UserRoleStudent)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		entry := &model.ActivityLog{
			ID:        fmt.Sprintf("alog-%d", i),
			UserID:    student.ID,
			Action:    model.ActionLogin,
			IP:        "127.0.0.1",
			Location:  "Localhost",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.AppendActivity(context.Background(), entry); err != nil {
			t.Fatalf("AppendActivity: %v", err)
		}
	}

	r := adminRequest(admin, "GET", "/api/v1/admin/users/"+student.ID+"/activity-logs")
	r.SetPathValue("userId", student.ID)
	w := httptest.NewRecorder()
	h.UserActivityLogs(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Logs  []*model.ActivityLog `json:"logs"`
		Total int                  `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 3 {
		t.Fatalf("total = %d, want 3", resp.Total)
	}
	for i := 1; i < len(resp.Logs); i++ {
		if resp.Logs[i].Timestamp.After(resp.Logs[i-1].Timestamp) {
			t.Error("logs not newest-first")
		}
	}
}

func TestDebugDumpCaps(t *testing.T) {
	h, store, _ := newTestHandler(t)
	admin := seedUser(t, store, "usr-a1", "ADMIN-001", model.UserRoleAdmin)

	for i := 0; i < 15; i++ {
		seedUser(t, store, fmt.Sprintf("usr-s%d", i), fmt.Sprintf("CS-2021-%03d", i), model.UserRoleStudent)
		entry := &model.ActivityLog{
			ID:        fmt.Sprintf("alog-%d", i),
			UserID:    fmt.Sprintf("usr-s%d", i),
			Action:    model.ActionRegister,
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := store.AppendActivity(context.Background(), entry); err != nil {
			t.Fatalf("AppendActivity: %v", err)
		}
	}

	w := httptest.NewRecorder()
	h.DebugDump(w, adminRequest(admin, "GET", "/api/v1/admin/debug-dump"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Users []json.RawMessage    `json:"users"`
		Logs  []*model.ActivityLog `json:"logs"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Users) != debugDumpLimit {
		t.Errorf("users = %d, want %d", len(resp.Users), debugDumpLimit)
	}
	if len(resp.Logs) != debugDumpLimit {
		t.Errorf("logs = %d, want %d", len(resp.Logs), debugDumpLimit)
	}
}

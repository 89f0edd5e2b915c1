// Package storage 提供存储层抽象
//
// mock.go 提供用于测试的内存 PersistentStore 实现
package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"doclocker-admin/internal/shared/model"
)

// MemStore 内存存储实现（仅用于测试）
//
// 行为与 mongostore 对齐：查无返回 (nil, nil)，
// 唯一键冲突返回 ErrDuplicate，删除不存在的实体返回 ErrNotFound。
type MemStore struct {
	mu      sync.RWMutex
	users   map[string]*model.User
	docs    map[string]*model.Document
	logs    []*model.ActivityLog
	logSeq  int64
	seqByID map[string]int64
}

// NewMemStore 创建内存存储实例
func NewMemStore() *MemStore {
	return &MemStore{
		users:   make(map[string]*model.User),
		docs:    make(map[string]*model.Document),
		seqByID: make(map[string]int64),
	}
}

// Close 关闭存储
func (s *MemStore) Close() error { return nil }

// ============================================================================
// UserStore
// ============================================================================

func (s *MemStore) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.StudentID == user.StudentID {
			return ErrDuplicate
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *MemStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStore) GetUserByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == identifier || u.StudentID == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemStore) GetUserByEmailOrStudentID(_ context.Context, email, studentID string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email || u.StudentID == studentID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemStore) UpdateUserLocation(_ context.Context, id, ip, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastIP = ip
	u.LastLocation = location
	return nil
}

func (s *MemStore) UpdateUserDepartment(_ context.Context, id, department string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Department = department
	return nil
}

func (s *MemStore) AddUserStorage(_ context.Context, id string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.StorageUsed += delta
	if u.StorageUsed < 0 {
		u.StorageUsed = 0
	}
	return nil
}

func (s *MemStore) ListUsers(_ context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) SampleUsers(ctx context.Context, n int) ([]*model.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) > n {
		users = users[:n]
	}
	return users, nil
}

func (s *MemStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// ============================================================================
// DocumentStore
// ============================================================================

func (s *MemStore) CreateDocument(_ context.Context, doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; ok {
		return ErrDuplicate
	}
	cp := *doc
	s.docs[doc.ID] = &cp
	return nil
}

func (s *MemStore) GetDocument(_ context.Context, id string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.docs[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStore) ListDocumentsByOwner(_ context.Context, studentID string) ([]*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterDocs(func(d *model.Document) bool { return d.StudentID == studentID }), nil
}

func (s *MemStore) SearchDocumentsByOwner(_ context.Context, studentID, query string) ([]*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	return s.filterDocs(func(d *model.Document) bool {
		return d.StudentID == studentID && strings.Contains(strings.ToLower(d.FileName), q)
	}), nil
}

func (s *MemStore) ListAllDocuments(_ context.Context) ([]*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterDocs(func(*model.Document) bool { return true }), nil
}

func (s *MemStore) SetDocumentFavorite(_ context.Context, id string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	d.IsFavorite = favorite
	return nil
}

func (s *MemStore) IncrementDownloadCount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	d.DownloadCount++
	return nil
}

func (s *MemStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *MemStore) DeleteDocumentsByOwner(_ context.Context, studentID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, d := range s.docs {
		if d.StudentID == studentID {
			delete(s.docs, id)
			n++
		}
	}
	return n, nil
}

// filterDocs 调用方必须持有读锁
func (s *MemStore) filterDocs(keep func(*model.Document) bool) []*model.Document {
	out := []*model.Document{}
	for _, d := range s.docs {
		if keep(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ============================================================================
// ActivityLogStore
// ============================================================================

func (s *MemStore) AppendActivity(_ context.Context, entry *model.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	s.logSeq++
	s.seqByID[entry.ID] = s.logSeq
	s.logs = append(s.logs, &cp)
	return nil
}

func (s *MemStore) ListActivityByUser(_ context.Context, userID string) ([]*model.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*model.ActivityLog{}
	for _, e := range s.logs {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	s.sortNewestFirst(out)
	return out, nil
}

func (s *MemStore) SampleActivity(_ context.Context, n int) ([]*model.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.ActivityLog, 0, len(s.logs))
	for _, e := range s.logs {
		cp := *e
		out = append(out, &cp)
	}
	s.sortNewestFirst(out)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// sortNewestFirst 时间倒序，同一时刻按插入序倒排
func (s *MemStore) sortNewestFirst(entries []*model.ActivityLog) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return s.seqByID[entries[i].ID] > s.seqByID[entries[j].ID]
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}

// 确保 MemStore 实现了 PersistentStore 接口
var _ PersistentStore = (*MemStore)(nil)

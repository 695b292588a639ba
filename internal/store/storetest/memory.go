// Package storetest はハンドラーのテスト用にメモリ上の Store と障害注入を提供します。
package storetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/campusconnect/backend/internal/models"
	"github.com/campusconnect/backend/internal/store"
)

// Memory はメモリ上の Store 実装です。Err を設定すると全操作がそのエラーを返します。
type Memory struct {
	mu            sync.Mutex
	seq           int
	users         []models.User
	events        []models.Event
	registrations []models.Registration

	Err error
}

var _ store.Store = (*Memory)(nil)

// NewMemory は空の Memory を返します。
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

// AddUser はユーザーを直接追加し、採番したIDを返します。
func (m *Memory) AddUser(u models.User) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.nextID("user")
	m.users = append(m.users, u)
	return u.ID
}

// Registrations は保存済みの参加登録の複製を返します。
func (m *Memory) Registrations() []models.Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Registration(nil), m.registrations...)
}

func (m *Memory) FindUserByEnrollment(ctx context.Context, enrollment string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.Enrollment == enrollment })
}

func (m *Memory) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.ID == id })
}

func (m *Memory) findUser(match func(models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	user.ID = m.nextID("user")
	m.users = append(m.users, *user)
	return nil
}

func (m *Memory) ListEvents(ctx context.Context, limit int) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	n := len(m.events)
	if n > limit {
		n = limit
	}
	return append(make([]models.Event, 0, n), m.events[:n]...), nil
}

func (m *Memory) CountEvents(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return int64(len(m.events)), nil
}

func (m *Memory) CreateEvent(ctx context.Context, event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	event.ID = m.nextID("event")
	m.events = append(m.events, *event)
	return nil
}

func (m *Memory) FindRegistration(ctx context.Context, userID, eventID string) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, r := range m.registrations {
		if r.UserID == userID && r.EventID == eventID {
			r := r
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	reg.ID = m.nextID("registration")
	m.registrations = append(m.registrations, *reg)
	return nil
}

func (m *Memory) Close(ctx context.Context) error {
	return nil
}

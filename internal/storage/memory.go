package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is the process-lifetime Store implementation.
type MemStore struct {
	mu     sync.RWMutex
	users  map[string]User
	drafts map[string]Draft

	now func() time.Time
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		users:  make(map[string]User),
		drafts: make(map[string]Draft),
		now:    time.Now,
	}
}

func (m *MemStore) GetUser(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemStore) GetUserByWallet(_ context.Context, walletAddress string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.WalletAddress == walletAddress {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *MemStore) CreateUser(_ context.Context, nu NewUser) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createUserLocked(nu), nil
}

// GetOrCreateUser returns the existing user for the wallet or creates one,
// holding the write lock across both steps so concurrent creates for the
// same wallet cannot race into duplicates.
func (m *MemStore) GetOrCreateUser(_ context.Context, nu NewUser) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.WalletAddress == nu.WalletAddress {
			return u, nil
		}
	}
	return m.createUserLocked(nu), nil
}

func (m *MemStore) createUserLocked(nu NewUser) User {
	u := User{
		ID:                   uuid.NewString(),
		WalletAddress:        nu.WalletAddress,
		FarcasterFID:         nu.FarcasterFID,
		FarcasterUsername:    nu.FarcasterUsername,
		FarcasterDisplayName: nu.FarcasterDisplayName,
		FarcasterAvatar:      nu.FarcasterAvatar,
		CreatedAt:            m.now(),
	}
	m.users[u.ID] = u
	return u
}

func (m *MemStore) UpdateUser(_ context.Context, id string, upd UserUpdate) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if upd.FarcasterFID != nil {
		u.FarcasterFID = *upd.FarcasterFID
	}
	if upd.FarcasterUsername != nil {
		u.FarcasterUsername = *upd.FarcasterUsername
	}
	if upd.FarcasterDisplayName != nil {
		u.FarcasterDisplayName = *upd.FarcasterDisplayName
	}
	if upd.FarcasterAvatar != nil {
		u.FarcasterAvatar = *upd.FarcasterAvatar
	}
	m.users[id] = u
	return u, nil
}

func (m *MemStore) GetDraft(_ context.Context, id string) (Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drafts[id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	return d, nil
}

func (m *MemStore) DraftsByUser(_ context.Context, userID string) ([]Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	drafts := make([]Draft, 0)
	for _, d := range m.drafts {
		if d.UserID == userID {
			drafts = append(drafts, d)
		}
	}
	return drafts, nil
}

func (m *MemStore) CreateDraft(_ context.Context, nd NewDraft) (Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	d := Draft{
		ID:               uuid.NewString(),
		UserID:           nd.UserID,
		Topic:            nd.Topic,
		ContentType:      nd.ContentType,
		Tone:             nd.Tone,
		GeneratedContent: nd.GeneratedContent,
		SelectedImage:    nd.SelectedImage,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	m.drafts[d.ID] = d
	return d, nil
}

func (m *MemStore) UpdateDraft(_ context.Context, id string, upd DraftUpdate) (Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	if upd.Topic != nil {
		d.Topic = *upd.Topic
	}
	if upd.ContentType != nil {
		d.ContentType = *upd.ContentType
	}
	if upd.Tone != nil {
		d.Tone = *upd.Tone
	}
	if upd.GeneratedContent != nil {
		d.GeneratedContent = *upd.GeneratedContent
	}
	if upd.SelectedImage != nil {
		d.SelectedImage = upd.SelectedImage
	}
	if upd.IsPublished != nil {
		d.IsPublished = *upd.IsPublished
	}
	if upd.FarcasterCastHash != nil {
		d.FarcasterCastHash = *upd.FarcasterCastHash
	}
	d.UpdatedAt = m.now()
	m.drafts[id] = d
	return d, nil
}

func (m *MemStore) DeleteDraft(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drafts[id]; !ok {
		return ErrNotFound
	}
	delete(m.drafts, id)
	return nil
}

package auth

import (
	"context"
	"sync"

	"github.com/spec-kit/garage-auth/internal/domain"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
	calls int
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	store := &fakeUserStore{users: make(map[string]*domain.User)}
	for _, u := range users {
		store.users[u.Username] = u
	}
	return store
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) remove(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, username)
}

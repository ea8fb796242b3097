package memory

import (
	"context"
	"sync"

	"github.com/sanosuguru/go-webinar-management/internal/domain/user"
)

// UserRepository はユーザーリポジトリのインメモリ実装
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]user.User)}
}

// Add はユーザーを登録する
func (r *UserRepository) Add(u *user.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

// SeedUsers は開発用の既定ユーザー（alice, bob）を返す
func SeedUsers() []*user.User {
	return []*user.User{
		user.NewUser("alice", "alice@gmail.com", "Alice"),
		user.NewUser("bob", "bob@gmail.com", "Bob"),
	}
}

var _ user.Repository = (*UserRepository)(nil)

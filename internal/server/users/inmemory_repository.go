package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/image-cloud/api/internal/common"
)

// InMemoryRepository is a map-backed Repository used in tests and by the
// in-memory repository manager. It enforces the same normalized-key
// uniqueness the Postgres indexes do.
type InMemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*User
	order []string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*User)}
}

func clone(u *User) *User {
	c := *u
	return &c
}

func (r *InMemoryRepository) Create(_ context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.UsernameLower = strings.ToLower(user.Username)
	user.EmailLower = strings.ToLower(user.Email)

	for _, u := range r.byID {
		if u.UsernameLower == user.UsernameLower || u.EmailLower == user.EmailLower {
			return nil, common.ErrDuplicate
		}
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	r.byID[user.ID] = clone(user)
	r.order = append(r.order, user.ID)

	return user, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.byID[id]; ok {
		return clone(u), nil
	}
	return nil, common.ErrNotFound
}

func (r *InMemoryRepository) find(match func(*User) bool) (*User, error) {
	for _, id := range r.order {
		if u, ok := r.byID[id]; ok && match(u) {
			return clone(u), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *InMemoryRepository) GetByLogin(_ context.Context, login string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(func(u *User) bool {
		return u.UsernameLower == login || u.EmailLower == login
	})
}

func (r *InMemoryRepository) GetByUsername(_ context.Context, usernameLower string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(func(u *User) bool { return u.UsernameLower == usernameLower })
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, emailLower string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(func(u *User) bool { return u.EmailLower == emailLower })
}

func (r *InMemoryRepository) List(_ context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*User, 0, len(r.byID))
	for _, id := range r.order {
		if u, ok := r.byID[id]; ok {
			result = append(result, clone(u))
		}
	}
	return result, nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

func (r *InMemoryRepository) Update(_ context.Context, id string, upd Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}

	if upd.Username != nil {
		lower := strings.ToLower(*upd.Username)
		for other, o := range r.byID {
			if other != id && o.UsernameLower == lower {
				return common.ErrDuplicate
			}
		}
		u.Username = *upd.Username
		u.UsernameLower = lower
	}
	if upd.Email != nil {
		lower := strings.ToLower(*upd.Email)
		for other, o := range r.byID {
			if other != id && o.EmailLower == lower {
				return common.ErrDuplicate
			}
		}
		u.Email = *upd.Email
		u.EmailLower = lower
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Quota != nil {
		u.Quota = *upd.Quota
	}

	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/image-cloud/api/internal/common"
)

type InMemoryRepository struct {
	mu      sync.RWMutex
	byToken map[string]*Session
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byToken: make(map[string]*Session)}
}

func (r *InMemoryRepository) Create(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	c := *session
	r.byToken[session.Token] = &c
	return nil
}

func (r *InMemoryRepository) GetByToken(_ context.Context, token string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.byToken[token]; ok {
		c := *s
		return &c, nil
	}
	return nil, common.ErrNotFound
}

func (r *InMemoryRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byToken[token]; !ok {
		return common.ErrNotFound
	}
	delete(r.byToken, token)
	return nil
}

func (r *InMemoryRepository) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, s := range r.byToken {
		if s.UserID == userID {
			delete(r.byToken, token)
		}
	}
	return nil
}

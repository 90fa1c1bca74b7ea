package db

import (
	"context"
	"database/sql"

	"github.com/image-cloud/api/internal/server/images"
	"github.com/image-cloud/api/internal/server/sessions"
	"github.com/image-cloud/api/internal/server/users"
)

type InMemoryRepositoryManager struct {
	users    users.Repository
	sessions sessions.Repository
	images   images.Repository
}

func (m *InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Sessions() sessions.Repository {
	return m.sessions
}

func (m *InMemoryRepositoryManager) Images() images.Repository {
	return m.images
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return &InMemoryRepositoryManager{
		users:    users.NewInMemoryRepository(),
		sessions: sessions.NewInMemoryRepository(),
		images:   images.NewInMemoryRepository(),
	}
}

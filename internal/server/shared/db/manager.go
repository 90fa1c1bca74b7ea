// Package db wires repositories to their backing store. The Postgres
// manager owns the connection pool and runs migrations; the in-memory
// manager backs tests and requires neither.
package db

import (
	"context"
	"database/sql"

	"github.com/image-cloud/api/internal/server/images"
	"github.com/image-cloud/api/internal/server/sessions"
	"github.com/image-cloud/api/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Sessions() sessions.Repository
	Images() images.Repository
}

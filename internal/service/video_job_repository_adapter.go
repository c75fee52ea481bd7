package service

import (
	"database/sql"

	"github.com/elvispreakerebi/jotta-backend/internal/store"
)

// VideoJobRepositoryAdapter adapts a store.VideoJobStore to the service's
// VideoJobRepository interface, adding access to the raw database
// connection for transaction management.
type VideoJobRepositoryAdapter struct {
	store.VideoJobStore
	db *sql.DB
}

// NewVideoJobRepositoryAdapter creates a new adapter that implements
// VideoJobRepository by delegating to a store.VideoJobStore implementation.
func NewVideoJobRepositoryAdapter(
	jobStore store.VideoJobStore,
	db *sql.DB,
) *VideoJobRepositoryAdapter {
	return &VideoJobRepositoryAdapter{
		VideoJobStore: jobStore,
		db:            db,
	}
}

// WithTx returns a new adapter bound to the given transaction.
func (a *VideoJobRepositoryAdapter) WithTx(tx *sql.Tx) VideoJobRepository {
	return &VideoJobRepositoryAdapter{
		VideoJobStore: a.VideoJobStore.WithTx(tx),
		db:            a.db,
	}
}

// DB returns the underlying database connection.
func (a *VideoJobRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// Ensure VideoJobRepositoryAdapter implements VideoJobRepository
var _ VideoJobRepository = (*VideoJobRepositoryAdapter)(nil)

package unitofwork

import (
	"context"

	"symptom-checker-be/internal/repository/contract"
)

// UnitOfWork scopes user repository calls to one optional transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
}

// RepositoryFactory hands out a fresh UnitOfWork per request.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

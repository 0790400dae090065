package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// It provides transaction control and transaction-bound repositories.
// Client code must explicitly manage the transaction lifecycle.
//
// The status-event log is deliberately outside this boundary: event appends
// run after the load transaction commits and are never rolled back with it.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Safe to defer after Begin; a rollback after commit is a no-op.
	Rollback(ctx context.Context) error

	// LoadRepository returns a LoadRepository bound to the current transaction.
	LoadRepository() LoadRepository

	// BlastRepository returns a BlastRepository bound to the current transaction.
	BlastRepository() BlastRepository

	// CourierRepository returns a CourierRepository bound to the current transaction.
	CourierRepository() CourierRepository
}

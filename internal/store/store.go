package store

import (
	"context"
	"errors"
)

// ErrTransient marks a failure of the underlying transaction that is safe to retry
// (serialization failure, deadlock, lost connection).
var ErrTransient = errors.New("transient store error")

// TxFunc is a unit of work executed inside a store transaction.
// Returning an error rolls the transaction back.
type TxFunc func(ctx context.Context, tx Tx) error

// Store is a transactional store for patrol data.
// All reads and writes go through InTx or InReadTx, every inbound operation is one call.
type Store interface {
	// InTx runs fn inside a read-write transaction. Concurrent transactions that touch
	// the same guard assignment are serialized by the implementation.
	InTx(ctx context.Context, fn TxFunc) error

	// InReadTx runs fn inside a read-only transaction with a consistent snapshot.
	InReadTx(ctx context.Context, fn TxFunc) error

	// Close releases resources held by the store.
	Close() error
}

// Tx groups the repository operations available inside a transaction.
type Tx interface {
	TenantStore
	AccountStore
	RouteStore
	AssignmentStore
	RunStore
	ActivityStore
}

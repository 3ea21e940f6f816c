// Package store holds in-memory entity state with optimistic mutations:
// changes apply locally before the remote call and roll back on failure.
package store

import (
	"context"
	"strings"

	"github.com/lucsky/cuid"
)

const tempIDPrefix = "temp-"

// TempID generates a temporary local ID for an optimistically created entity.
func TempID() string {
	return tempIDPrefix + cuid.New()
}

// IsTempID reports whether an ID was generated locally and never confirmed.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// Mutation is one optimistic change: snapshot the prior state, apply the
// change locally, call the remote, then reconcile with the server record or
// roll back to the snapshot.
type Mutation[T any] struct {
	Snapshot   func() T
	ApplyLocal func()
	Remote     func(context.Context) (T, error)
	Reconcile  func(record T)
	Rollback   func(snapshot T)
}

// Mutate runs the optimistic mutation protocol. On remote failure the
// snapshot is restored and the error returned; there is no retry.
func Mutate[T any](ctx context.Context, m Mutation[T]) (T, error) {
	snapshot := m.Snapshot()
	m.ApplyLocal()

	record, err := m.Remote(ctx)
	if err != nil {
		m.Rollback(snapshot)
		var zero T
		return zero, err
	}

	m.Reconcile(record)
	return record, nil
}

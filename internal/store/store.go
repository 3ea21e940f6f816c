package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a mutation targets an ID absent from the store.
var ErrNotFound = errors.New("store: entity not found")

// Store is an in-memory map of entities keyed by ID, mutated optimistically.
// The zero value is not usable; construct with New.
type Store[T any] struct {
	mu      sync.RWMutex
	items   map[string]T
	idOf    func(T) string
	withID  func(T, string) T
	lastErr string
}

// New creates a store. idOf extracts an entity's ID; withID returns a copy
// of the entity with the given ID (used for temporary create entries).
func New[T any](idOf func(T) string, withID func(T, string) T) *Store[T] {
	return &Store[T]{
		items:  make(map[string]T),
		idOf:   idOf,
		withID: withID,
	}
}

// Replace resets the store contents from a fetched list.
func (s *Store[T]) Replace(list []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T, len(list))
	for _, item := range list {
		s.items[s.idOf(item)] = item
	}
}

// Insert adds or overwrites a single entity.
func (s *Store[T]) Insert(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[s.idOf(item)] = item
}

// Get returns the entity with the given ID.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// List returns all entities in the store in no particular order.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]T, 0, len(s.items))
	for _, item := range s.items {
		list = append(list, item)
	}
	return list
}

// Len returns the number of entities held.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// LastError returns the most recent mutation error, or "" after a success.
func (s *Store[T]) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store[T]) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err.Error()
}

// Create inserts the draft under a temporary ID, calls the remote create,
// and swaps in the server record (the ID changes). On failure the temporary
// entry is removed; nothing with a temp ID survives settlement.
func (s *Store[T]) Create(ctx context.Context, draft T, remote func(context.Context, T) (T, error)) (T, error) {
	tempID := TempID()
	temp := s.withID(draft, tempID)

	created, err := Mutate(ctx, Mutation[T]{
		Snapshot: func() T { return temp },
		ApplyLocal: func() {
			s.mu.Lock()
			s.items[tempID] = temp
			s.mu.Unlock()
		},
		Remote: func(ctx context.Context) (T, error) {
			return remote(ctx, draft)
		},
		Reconcile: func(record T) {
			s.mu.Lock()
			delete(s.items, tempID)
			s.items[s.idOf(record)] = record
			s.lastErr = ""
			s.mu.Unlock()
		},
		Rollback: func(T) {
			s.mu.Lock()
			delete(s.items, tempID)
			s.mu.Unlock()
		},
	})
	if err != nil {
		s.setError(err)
		var zero T
		return zero, err
	}
	return created, nil
}

// Update applies the patch in memory, calls the remote update, and overwrites
// with the server record (capturing server-computed fields). On failure the
// exact pre-mutation snapshot is restored.
func (s *Store[T]) Update(ctx context.Context, id string, patch func(T) T, remote func(context.Context) (T, error)) (T, error) {
	s.mu.RLock()
	snapshot, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		var zero T
		return zero, ErrNotFound
	}

	updated, err := Mutate(ctx, Mutation[T]{
		Snapshot: func() T { return snapshot },
		ApplyLocal: func() {
			s.mu.Lock()
			s.items[id] = patch(snapshot)
			s.mu.Unlock()
		},
		Remote: remote,
		Reconcile: func(record T) {
			s.mu.Lock()
			delete(s.items, id)
			s.items[s.idOf(record)] = record
			s.lastErr = ""
			s.mu.Unlock()
		},
		Rollback: func(snap T) {
			s.mu.Lock()
			s.items[id] = snap
			s.mu.Unlock()
		},
	})
	if err != nil {
		s.setError(err)
		var zero T
		return zero, err
	}
	return updated, nil
}

// Delete removes the entity in memory and calls the remote delete. On failure
// the snapshot is reinserted.
func (s *Store[T]) Delete(ctx context.Context, id string, remote func(context.Context) error) error {
	s.mu.RLock()
	snapshot, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	_, err := Mutate(ctx, Mutation[T]{
		Snapshot: func() T { return snapshot },
		ApplyLocal: func() {
			s.mu.Lock()
			delete(s.items, id)
			s.mu.Unlock()
		},
		Remote: func(ctx context.Context) (T, error) {
			var zero T
			return zero, remote(ctx)
		},
		Reconcile: func(T) {
			s.mu.Lock()
			s.lastErr = ""
			s.mu.Unlock()
		},
		Rollback: func(snap T) {
			s.mu.Lock()
			s.items[id] = snap
			s.mu.Unlock()
		},
	})
	if err != nil {
		s.setError(err)
		return err
	}
	return nil
}

// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"todolist/internal/identity"
	"todolist/internal/task"
)

// FakeStore is an in-memory implementation of remote.Store for testing.
// It records every write so tests can assert on forwarded calls.
type FakeStore struct {
	mu    sync.RWMutex
	tasks map[string][]task.Task // email -> tasks
	users map[string]identity.Identity

	// Calls made, in order.
	SaveCalls     []task.Task
	RemoveCalls   []task.Task
	IdentityCalls []identity.Identity

	// Error injection for testing
	FetchAllErr     error
	SaveErr         error
	RemoveErr       error
	SaveIdentityErr error
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		tasks: make(map[string][]task.Task),
		users: make(map[string]identity.Identity),
	}
}

// SeedTask places a task in an identity's collection without recording a
// call.
func (f *FakeStore) SeedTask(email string, t task.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[email] = append(f.tasks[email], t)
}

// Tasks returns the stored collection for an email.
func (f *FakeStore) Tasks(email string) []task.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]task.Task(nil), f.tasks[email]...)
}

// FetchAll implements remote.Store.
func (f *FakeStore) FetchAll(ctx context.Context, id identity.Identity) ([]task.Task, error) {
	if f.FetchAllErr != nil {
		return nil, f.FetchAllErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]task.Task(nil), f.tasks[id.Email]...), nil
}

// Save implements remote.Store.
func (f *FakeStore) Save(ctx context.Context, t task.Task, id identity.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SaveCalls = append(f.SaveCalls, t)
	if f.SaveErr != nil {
		return f.SaveErr
	}

	list := f.tasks[id.Email]
	for i := range list {
		if list[i].ID == t.ID {
			list[i] = t
			return nil
		}
	}
	f.tasks[id.Email] = append(list, t)
	return nil
}

// Remove implements remote.Store. Removing an absent id succeeds.
func (f *FakeStore) Remove(ctx context.Context, t task.Task, id identity.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RemoveCalls = append(f.RemoveCalls, t)
	if f.RemoveErr != nil {
		return f.RemoveErr
	}

	list := f.tasks[id.Email]
	for i := range list {
		if list[i].ID == t.ID {
			f.tasks[id.Email] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

// SaveIdentity implements remote.Store.
func (f *FakeStore) SaveIdentity(ctx context.Context, id identity.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.IdentityCalls = append(f.IdentityCalls, id)
	if f.SaveIdentityErr != nil {
		return f.SaveIdentityErr
	}
	f.users[id.Email] = id
	return nil
}

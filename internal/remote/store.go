// Package remote defines the backend-agnostic contract for the per-user
// task document store. Callers never import the backend client directly.
package remote

import (
	"context"

	"todolist/internal/identity"
	"todolist/internal/task"
)

// Store is the durable per-identity task storage, addressed by
// (identity email, task id).
type Store interface {
	// FetchAll returns every task in the identity's collection. A single
	// document that fails to decode fails the whole fetch.
	FetchAll(ctx context.Context, id identity.Identity) ([]task.Task, error)

	// Save upserts the full task record. Creation and update are the same
	// operation; the record is always overwritten whole, never patched.
	Save(ctx context.Context, t task.Task, id identity.Identity) error

	// Remove deletes the task record. Removing an absent id is not an error.
	Remove(ctx context.Context, t task.Task, id identity.Identity) error

	// SaveIdentity upserts the identity's profile document, independent of
	// its tasks.
	SaveIdentity(ctx context.Context, id identity.Identity) error
}

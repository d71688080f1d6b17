package commands

import (
	"context"
	"fmt"
	"io"
	"sync"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/identity"
	"todolist/internal/remote"
	"todolist/internal/session"
	"todolist/internal/task"
	"todolist/internal/tasklist"
)

// collaborator collects session and write callbacks for a single command
// invocation. It stands in for the app's UI layer: one result per callback,
// inspected after the triggering call returns.
type collaborator struct {
	mu sync.Mutex

	identity   identity.Identity
	signedIn   bool
	tasks      []task.Task
	signInErr  error
	fetchErr   error
	signOutErr error
	writeErr   error
}

func (c *collaborator) SignInSucceeded(id identity.Identity) {
	c.identity = id
	c.signedIn = true
}

func (c *collaborator) SignInFailed(err error) { c.signInErr = err }

func (c *collaborator) FetchSucceeded(tasks []task.Task) { c.tasks = tasks }

func (c *collaborator) FetchFailed(err error) { c.fetchErr = err }

func (c *collaborator) SignOutFailed(err error) { c.signOutErr = err }

// WriteFailed may be called from a forward goroutine.
func (c *collaborator) WriteFailed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr == nil {
		c.writeErr = err
	}
}

func (c *collaborator) writeFailure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeErr
}

// openSession resumes the persisted session, fetches the remote collection,
// and ingests it into a fresh reconciler. On failure it reports to errOut
// and returns a non-success exit code.
func openSession(ctx context.Context, cfg *config.Config, store remote.Store, errOut io.Writer) (*tasklist.List, *collaborator, int) {
	collab := &collaborator{}
	gate := session.NewGate(identity.NewStore(cfg.IdentityPath()), store, collab)

	if !gate.Resume(ctx) {
		fmt.Fprintln(errOut, "error: not signed in (run: todolist login)")
		return nil, nil, exitcode.AuthError
	}
	if collab.fetchErr != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", collab.fetchErr)
		return nil, nil, exitcode.BackendError
	}

	list := tasklist.New(store, gate.Current, collab)
	list.Ingest(collab.tasks)
	return list, collab, exitcode.Success
}

// finishWrites waits for outstanding remote forwards and maps any failure
// to an exit code.
func finishWrites(cfg *config.Config, list *tasklist.List, collab *collaborator, out, errOut io.Writer) int {
	list.Wait()
	if err := collab.writeFailure(); err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

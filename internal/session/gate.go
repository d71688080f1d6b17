// Package session gates access to the remote task store behind the
// signed-in identity.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"todolist/internal/identity"
	"todolist/internal/remote"
	"todolist/internal/task"
)

// Authenticator is the external identity provider.
type Authenticator interface {
	// SignIn resolves the user's identity, or fails with the provider's
	// error.
	SignIn(ctx context.Context) (identity.Identity, error)

	// SignOut ends the session with the provider.
	SignOut(ctx context.Context) error
}

// Listener receives the asynchronous results of sign-in, fetch, and
// sign-out. Each outcome is delivered exactly once per triggering call.
// Sign-out success has no callback; it is synchronous for the caller.
type Listener interface {
	SignInSucceeded(id identity.Identity)
	SignInFailed(err error)
	FetchSucceeded(tasks []task.Task)
	FetchFailed(err error)
	SignOutFailed(err error)
}

// AuthError reports a failed external sign-in.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("sign in: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// SignOutError reports a failed provider sign-out. The local sign-out has
// already taken effect by the time this is raised; it is never rolled back.
type SignOutError struct {
	Err error
}

func (e *SignOutError) Error() string { return fmt.Sprintf("sign out: %v", e.Err) }
func (e *SignOutError) Unwrap() error { return e.Err }

// Gate is a two-state machine: signed out, or signed in with an identity.
// The persisted identity is the only durable session state; its absence
// means signed out.
type Gate struct {
	identities *identity.Store
	store      remote.Store
	listener   Listener
	current    *identity.Identity
}

// NewGate creates a Gate over the given identity store and remote store,
// delivering results to the listener.
func NewGate(identities *identity.Store, store remote.Store, l Listener) *Gate {
	return &Gate{identities: identities, store: store, listener: l}
}

// Current returns the signed-in identity, if any.
func (g *Gate) Current() (identity.Identity, bool) {
	if g.current == nil {
		return identity.Identity{}, false
	}
	return *g.current, true
}

// Resume restores a persisted session at startup. When an identity is
// found the gate transitions to signed in and triggers the same fetch as a
// fresh sign-in. Returns whether a session was restored.
func (g *Gate) Resume(ctx context.Context) bool {
	id, ok, err := g.identities.Load()
	if err != nil {
		log.Warn().Err(err).Msg("could not load persisted identity")
		return false
	}
	if !ok {
		return false
	}
	log.Debug().Str("email", id.Email).Msg("session resumed")
	g.current = &id
	g.fetch(ctx)
	return true
}

// SignIn runs the external authentication and, on success, persists the
// identity, upserts the remote profile document, and fetches the task
// collection. A fetch failure leaves the session signed in with an empty
// list.
func (g *Gate) SignIn(ctx context.Context, auth Authenticator) {
	id, err := auth.SignIn(ctx)
	if err != nil {
		g.listener.SignInFailed(&AuthError{Err: err})
		return
	}

	if err := g.identities.Save(id); err != nil {
		g.listener.SignInFailed(&AuthError{Err: err})
		return
	}

	log.Debug().Str("email", id.Email).Msg("signed in")
	g.current = &id
	g.listener.SignInSucceeded(id)

	if err := g.store.SaveIdentity(ctx, id); err != nil {
		// The profile document is independent of the task collection;
		// failing to write it does not block the session.
		log.Error().Err(err).Msg("could not save identity document")
	}

	g.fetch(ctx)
}

// SignOut removes the persisted identity first, then asks the provider to
// end the session. Local sign-out always succeeds once initiated; a
// provider failure is surfaced but never rolls it back.
func (g *Gate) SignOut(ctx context.Context, auth Authenticator) {
	if err := g.identities.Clear(); err != nil {
		log.Warn().Err(err).Msg("could not clear persisted identity")
	}
	g.current = nil
	log.Debug().Msg("signed out")

	if err := auth.SignOut(ctx); err != nil {
		g.listener.SignOutFailed(&SignOutError{Err: err})
	}
}

func (g *Gate) fetch(ctx context.Context) {
	tasks, err := g.store.FetchAll(ctx, *g.current)
	if err != nil {
		g.listener.FetchFailed(err)
		return
	}
	g.listener.FetchSucceeded(tasks)
}

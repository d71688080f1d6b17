package testutil

import (
	"context"

	"todolist/internal/identity"
)

// FakeAuthenticator is a canned identity provider for session tests.
type FakeAuthenticator struct {
	Identity identity.Identity

	// Error injection.
	SignInErr  error
	SignOutErr error

	SignInCalls  int
	SignOutCalls int
}

// SignIn implements session.Authenticator.
func (f *FakeAuthenticator) SignIn(ctx context.Context) (identity.Identity, error) {
	f.SignInCalls++
	if f.SignInErr != nil {
		return identity.Identity{}, f.SignInErr
	}
	return f.Identity, nil
}

// SignOut implements session.Authenticator.
func (f *FakeAuthenticator) SignOut(ctx context.Context) error {
	f.SignOutCalls++
	return f.SignOutErr
}

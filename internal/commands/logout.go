package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todolist/internal/auth"
	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/identity"
	"todolist/internal/remote"
	"todolist/internal/session"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Sign out and remove stored credentials" }
func (c *LogoutCmd) Usage() string     { return "todolist logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, _ remote.Store, args []string, out, errOut io.Writer) int {
	ids := identity.NewStore(cfg.IdentityPath())
	if _, ok, _ := ids.Load(); !ok && !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not signed in")
		}
		return exitcode.Success
	}

	collab := &collaborator{}
	gate := session.NewGate(ids, nil, collab)
	gate.SignOut(ctx, auth.NewGoogle(cfg))

	// The local sign-out has already happened; a provider failure is
	// reported but changes nothing.
	if collab.signOutErr != nil {
		fmt.Fprintf(errOut, "warning: provider sign-out failed: %v\n", collab.signOutErr)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

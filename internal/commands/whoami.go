package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/identity"
	"todolist/internal/remote"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the persisted identity, if any.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string     { return "todolist whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return false }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, _ remote.Store, args []string, out, errOut io.Writer) int {
	id, ok, err := identity.NewStore(cfg.IdentityPath()).Load()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !ok {
		fmt.Fprintln(out, "not signed in")
		return exitcode.Success
	}
	fmt.Fprintf(out, "%s <%s>\n", id.Name, id.Email)
	return exitcode.Success
}

package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/remote"
)

// Version is the release version the version command reports.
const Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd prints the binary name and release version.
type VersionCmd struct{}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "todolist version" }
func (c *VersionCmd) NeedsAuth() bool   { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *VersionCmd) Run(_ context.Context, _ *config.Config, _ remote.Store, _ []string, out, _ io.Writer) int {
	fmt.Fprintln(out, "todolist "+Version)
	return exitcode.Success
}

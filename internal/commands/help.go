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

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Show help" }
func (c *HelpCmd) Usage() string     { return "todolist help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, _ remote.Store, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "Usage: todolist <command> [flags] [args]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range DefaultRegistry.All() {
		fmt.Fprintf(out, "  %-10s %s\n", cmd.Name(), cmd.Synopsis())
	}
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Common flags:")
	fmt.Fprintln(out, "  -config <dir>  Use an alternate config directory")
	fmt.Fprintln(out, "  -quiet         Suppress informational output")
	fmt.Fprintln(out, "  -debug         Enable debug logging")
	return exitcode.Success
}

package commands

import (
	"context"
	"flag"
	"io"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/remote"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"remove"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "todolist rm <n>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, store remote.Store, args []string, out, errOut io.Writer) int {
	num, code := parseTaskNumber(args, errOut)
	if code != exitcode.Success {
		return code
	}

	list, collab, code := openSession(ctx, cfg, store, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := list.Remove(num - 1); err != nil {
		return mapListError(err, num, errOut)
	}
	return finishWrites(cfg, list, collab, out, errOut)
}

package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/remote"
	"todolist/internal/tasklist"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command: it toggles a task between pending
// and done.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task's status" }
func (c *DoneCmd) Usage() string     { return "todolist done <n>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, store remote.Store, args []string, out, errOut io.Writer) int {
	num, code := parseTaskNumber(args, errOut)
	if code != exitcode.Success {
		return code
	}

	list, collab, code := openSession(ctx, cfg, store, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := list.ToggleStatus(num - 1); err != nil {
		return mapListError(err, num, errOut)
	}
	return finishWrites(cfg, list, collab, out, errOut)
}

// parseTaskNumber extracts the single 1-based task number argument.
func parseTaskNumber(args []string, errOut io.Writer) (int, int) {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task number required")
		return 0, exitcode.UserError
	}
	num, err := strconv.Atoi(args[0])
	if err != nil || num < 1 {
		fmt.Fprintf(errOut, "error: invalid task number: %s\n", args[0])
		return 0, exitcode.UserError
	}
	return num, exitcode.Success
}

// mapListError maps reconciler errors to exit codes and messages.
func mapListError(err error, num int, errOut io.Writer) int {
	if errors.Is(err, tasklist.ErrIndexOutOfRange) {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}

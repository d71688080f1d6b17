package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/remote"
	"todolist/internal/task"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	due         string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todolist add [--desc <text>] [--due <timestamp|date>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, store remote.Store, args []string, out, errOut io.Writer) int {
	// Title validation happens here, before the task is constructed.
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	due := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	if c.due != "" {
		parsed, err := ParseDue(c.due)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		due = parsed
	}

	list, collab, code := openSession(ctx, cfg, store, errOut)
	if code != exitcode.Success {
		return code
	}

	list.Add(task.New(title, c.description, due))
	return finishWrites(cfg, list, collab, out, errOut)
}

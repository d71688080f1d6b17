package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/output"
	"todolist/internal/remote"
	"todolist/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	status   string
	due      string
	search   string
	expanded bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "Show tasks" }
func (c *ListCmd) Usage() string {
	return "todolist list [--status pending|done] [--due <timestamp|date>] [--search <text>] [--expanded]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.search, "search", "", "")
	fs.BoolVar(&c.expanded, "expanded", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, store remote.Store, args []string, out, errOut io.Writer) int {
	if c.status != "" && c.due != "" {
		fmt.Fprintln(errOut, "error: cannot use both --status and --due")
		return exitcode.UserError
	}

	list, _, code := openSession(ctx, cfg, store, errOut)
	if code != exitcode.Success {
		return code
	}

	if c.status != "" {
		status := task.Status(c.status)
		if status != task.StatusPending && status != task.StatusDone {
			fmt.Fprintf(errOut, "error: unknown status: %s\n", c.status)
			return exitcode.UserError
		}
		list.FilterByStatus(status)
	}

	if c.due != "" {
		due, err := ParseDue(c.due)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		list.FilterByDate(due)
	}

	if c.search != "" {
		list.Search(c.search)
	}

	for i, t := range list.Displayed() {
		if c.expanded {
			output.FormatTaskExpanded(out, i+1, t)
		} else {
			output.FormatTask(out, i+1, t)
		}
	}
	return exitcode.Success
}

// ParseDue parses a due date argument: a full RFC 3339 timestamp, or a
// plain date taken as midnight UTC.
func ParseDue(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid due date: %s", s)
}

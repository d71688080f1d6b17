// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todolist/internal/task"
)

const (
	// GlyphPending marks a task that is still open.
	GlyphPending = "[ ]"

	// GlyphDone marks a completed task.
	GlyphDone = "[x]"
)

// FormatTask formats a task line.
// Format: "{N:>4}  {GLYPH}  {DUE}  {TITLE}\n" (4-wide right-aligned number).
func FormatTask(w io.Writer, num int, t task.Task) {
	fmt.Fprintf(w, "%4d  %s  %s  %s\n", num, glyph(t.Status), t.DueDate.Format("2006-01-02 15:04"), normalizeTitle(t.Title))
}

// FormatTaskExpanded writes the task line followed by its description,
// indented underneath.
func FormatTaskExpanded(w io.Writer, num int, t task.Task) {
	FormatTask(w, num, t)
	if strings.TrimSpace(t.Description) != "" {
		fmt.Fprintf(w, "      %s\n", normalizeTitle(t.Description))
	}
}

func glyph(s task.Status) string {
	if s == task.StatusDone {
		return GlyphDone
	}
	return GlyphPending
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

package task

import (
	"fmt"
	"time"
)

// DecodeError reports a remote task document that does not match the
// expected shape. Decoding is strict: any missing or malformed field fails
// the whole document, never a partial result.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode task: field %q: %s", e.Field, e.Reason)
}

// Decode parses a remote document's fields into a Task.
func Decode(fields map[string]any) (Task, error) {
	id, err := stringField(fields, "id")
	if err != nil {
		return Task{}, err
	}
	title, err := stringField(fields, "title")
	if err != nil {
		return Task{}, err
	}
	description, err := stringField(fields, "description")
	if err != nil {
		return Task{}, err
	}
	statusTag, err := stringField(fields, "status")
	if err != nil {
		return Task{}, err
	}
	status := Status(statusTag)
	if status != StatusPending && status != StatusDone {
		return Task{}, &DecodeError{Field: "status", Reason: fmt.Sprintf("unknown value %q", statusTag)}
	}
	dueRaw, err := stringField(fields, "dueDate")
	if err != nil {
		return Task{}, err
	}
	due, err := time.Parse(TimeLayout, dueRaw)
	if err != nil {
		return Task{}, &DecodeError{Field: "dueDate", Reason: fmt.Sprintf("not a valid timestamp: %q", dueRaw)}
	}

	return Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      status,
		DueDate:     due,
	}, nil
}

// Encode projects the task into its remote document fields, the inverse of
// Decode.
func (t Task) Encode() map[string]any {
	return map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"dueDate":     t.DueDate.Format(TimeLayout),
	}
}

func stringField(fields map[string]any, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", &DecodeError{Field: key, Reason: "missing"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &DecodeError{Field: key, Reason: fmt.Sprintf("expected string, got %T", raw)}
	}
	return s, nil
}

// Package task defines the task entity and its wire projection.
package task

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status represents the completion state of a task.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// TimeLayout is the wire format for due dates: full date and full time.
const TimeLayout = time.RFC3339

// Task is a single to-do item. The ID is assigned once at creation and
// never changes; reconciliation identifies tasks by ID, not by value.
type Task struct {
	ID          string    `json:"id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Status      Status    `json:"status" validate:"required,oneof=pending done"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
}

var validate = validator.New()

// New creates a pending task with a fresh id. Title validation is the
// caller's responsibility.
func New(title, description string, due time.Time) Task {
	return Task{
		ID:          newID(),
		Title:       title,
		Description: description,
		Status:      StatusPending,
		DueDate:     due,
	}
}

// Validate checks the task against its field constraints.
func (t Task) Validate() error {
	return validate.Struct(t)
}

// Toggled returns a copy of the task with its status flipped.
func (t Task) Toggled() Task {
	if t.Status == StatusPending {
		t.Status = StatusDone
	} else {
		t.Status = StatusPending
	}
	return t
}

// idBound caps generated ids below 2^62 so they fit a decimal int64 string.
var idBound = new(big.Int).Lsh(big.NewInt(1), 62)

// newID returns a random numeric id string.
func newID() string {
	n, err := rand.Int(rand.Reader, idBound)
	if err != nil {
		// crypto/rand only fails if the platform source is broken.
		panic(err)
	}
	return n.String()
}

// Package tasklist holds the in-memory authoritative task list and keeps
// its filtered and searched projections consistent with the remote store.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"todolist/internal/identity"
	"todolist/internal/remote"
	"todolist/internal/task"
)

// ErrSearching is returned when a removal is attempted against search
// results. Deletion is defined only against the unfiltered view; a search
// index does not map unambiguously back to it.
var ErrSearching = errors.New("cannot remove while a search is active")

// ErrIndexOutOfRange is returned for a displayed index outside the current
// list.
var ErrIndexOutOfRange = errors.New("index out of range")

// WriteListener is told about failed remote forwards. Each failure is
// reported exactly once; nothing is retried and no local mutation is rolled
// back, so the local list can diverge from the store after a failure.
type WriteListener interface {
	WriteFailed(err error)
}

// IdentityFunc yields the identity remote forwards are keyed by.
type IdentityFunc func() (identity.Identity, bool)

// filterKind discriminates the active category filter.
type filterKind int

const (
	filterNone filterKind = iota
	filterStatus
	filterDate
)

type activeFilter struct {
	kind   filterKind
	status task.Status
	date   time.Time
}

// List is the reconciler. It is driven from a single logical thread; local
// state mutates synchronously on each call and remote forwards complete in
// the background.
type List struct {
	store    remote.Store
	owner    IdentityFunc
	listener WriteListener

	authoritative []task.Task
	unfiltered    []task.Task
	searchResults []task.Task
	expanded      []bool
	filter        activeFilter
	searching     bool
	searchText    string

	forwards sync.WaitGroup
}

// New creates a List forwarding mutations to store under the identity
// yielded by owner. Write failures go to l.
func New(store remote.Store, owner IdentityFunc, l WriteListener) *List {
	return &List{store: store, owner: owner, listener: l}
}

// Displayed returns the list currently shown: the search results while a
// search is active, the authoritative list otherwise.
func (l *List) Displayed() []task.Task {
	if l.searching {
		return l.searchResults
	}
	return l.authoritative
}

// Expanded returns the per-row expansion flags. Its length always equals
// the displayed list's; index i in both refers to the same task.
func (l *List) Expanded() []bool {
	return l.expanded
}

// Searching reports whether a search is active.
func (l *List) Searching() bool {
	return l.searching
}

// Ingest replaces the whole working set with tasks, typically after a
// remote fetch. Any filter or search state is discarded.
func (l *List) Ingest(tasks []task.Task) {
	l.authoritative = snapshot(tasks)
	l.unfiltered = snapshot(tasks)
	l.searchResults = nil
	l.searching = false
	l.searchText = ""
	l.filter = activeFilter{}
	l.expanded = make([]bool, len(l.authoritative))
}

// Add appends a new task and forwards its save. An active status or date
// filter is cleared first so the new task is visible.
func (l *List) Add(t task.Task) {
	if l.filter.kind != filterNone {
		l.restoreUnfiltered()
	}
	l.authoritative = append(l.authoritative, t)
	l.unfiltered = snapshot(l.authoritative)
	if l.searching {
		// The new task may or may not match the active search; re-derive
		// the projection so the flags stay in lockstep with it.
		l.refreshProjections()
	} else {
		l.expanded = append(l.expanded, false)
	}
	l.forward("save", t, l.store.Save)
}

// Update replaces the entry with t's id wherever it appears, then forwards
// the save. List order and the expansion flags are untouched; an unknown id
// changes nothing locally.
func (l *List) Update(t task.Task) {
	replaceByID(l.authoritative, t)
	replaceByID(l.unfiltered, t)
	replaceByID(l.searchResults, t)
	l.forward("save", t, l.store.Save)
}

// Remove deletes the task at the displayed index and forwards the removal.
// It is rejected while a search is active: no local change, no remote call.
func (l *List) Remove(index int) error {
	if l.searching {
		return ErrSearching
	}
	if index < 0 || index >= len(l.authoritative) {
		return ErrIndexOutOfRange
	}
	removed := l.authoritative[index]
	l.authoritative = append(l.authoritative[:index], l.authoritative[index+1:]...)
	l.expanded = append(l.expanded[:index], l.expanded[index+1:]...)
	l.unfiltered = snapshot(l.authoritative)
	l.forward("remove", removed, l.store.Remove)
	return nil
}

// ToggleExpanded flips the expansion flag at the displayed index. Pure
// local UI state; nothing is forwarded.
func (l *List) ToggleExpanded(index int) error {
	if index < 0 || index >= len(l.expanded) {
		return ErrIndexOutOfRange
	}
	l.expanded[index] = !l.expanded[index]
	return nil
}

// ToggleStatus flips the status of the task at the displayed index and
// updates it everywhere, including the remote store.
func (l *List) ToggleStatus(index int) error {
	displayed := l.Displayed()
	if index < 0 || index >= len(displayed) {
		return ErrIndexOutOfRange
	}
	l.Update(displayed[index].Toggled())
	return nil
}

// Search projects the authoritative list to titles containing text,
// case-insensitively and order-preserving. Empty text ends the search.
func (l *List) Search(text string) {
	l.searching = text != ""
	l.searchText = text
	l.recomputeSearch()
	l.expanded = make([]bool, len(l.Displayed()))
}

// FilterByStatus narrows the authoritative list to tasks with the given
// status. The unfiltered snapshot is kept for ClearFilter.
func (l *List) FilterByStatus(status task.Status) {
	l.applyFilter(activeFilter{kind: filterStatus, status: status}, func(t task.Task) bool {
		return t.Status == status
	})
}

// FilterByDate narrows the authoritative list to tasks whose due date
// equals the given instant exactly, full timestamp included.
func (l *List) FilterByDate(date time.Time) {
	l.applyFilter(activeFilter{kind: filterDate, date: date}, func(t task.Task) bool {
		return t.DueDate.Equal(date)
	})
}

// ClearFilter restores the authoritative list from the unfiltered snapshot.
func (l *List) ClearFilter() {
	l.restoreUnfiltered()
}

// Wait blocks until all outstanding remote forwards have completed.
func (l *List) Wait() {
	l.forwards.Wait()
}

func (l *List) applyFilter(f activeFilter, keep func(task.Task) bool) {
	l.authoritative = nil
	for _, t := range l.unfiltered {
		if keep(t) {
			l.authoritative = append(l.authoritative, t)
		}
	}
	l.filter = f
	l.refreshProjections()
}

func (l *List) restoreUnfiltered() {
	l.authoritative = snapshot(l.unfiltered)
	l.filter = activeFilter{}
	l.refreshProjections()
}

// refreshProjections re-derives the search results and expansion flags
// after the authoritative list changed shape.
func (l *List) refreshProjections() {
	l.recomputeSearch()
	l.expanded = make([]bool, len(l.Displayed()))
}

func (l *List) recomputeSearch() {
	l.searchResults = nil
	if !l.searching {
		return
	}
	needle := strings.ToLower(l.searchText)
	for _, t := range l.authoritative {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			l.searchResults = append(l.searchResults, t)
		}
	}
}

// forward sends a mutation to the remote store in the background. Failures
// are reported to the write listener exactly once; nothing retries.
func (l *List) forward(op string, t task.Task, call func(context.Context, task.Task, identity.Identity) error) {
	id, ok := l.owner()
	if !ok {
		l.listener.WriteFailed(&remote.WriteError{Op: op, Err: fmt.Errorf("not signed in")})
		return
	}
	l.forwards.Add(1)
	go func() {
		defer l.forwards.Done()
		// Remote forwards are not cancellable; a sign-out does not abort
		// an in-flight write.
		if err := call(context.Background(), t, id); err != nil {
			log.Error().Err(err).Str("op", op).Str("task", t.ID).
				Msg("remote forward failed; local list has diverged")
			l.listener.WriteFailed(err)
		}
	}()
}

func replaceByID(list []task.Task, t task.Task) {
	for i := range list {
		if list[i].ID == t.ID {
			list[i] = t
		}
	}
}

func snapshot(tasks []task.Task) []task.Task {
	return append([]task.Task(nil), tasks...)
}

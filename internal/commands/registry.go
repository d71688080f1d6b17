package commands

import (
	"fmt"
	"sort"
)

// Registry maps command names and aliases to commands. All registration
// happens from init functions on the main goroutine, so lookups never race
// with it and no locking is needed.
type Registry struct {
	byName map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Command)}
}

// Register adds a command under its primary name and every alias. Any name
// collision fails the whole registration.
func (r *Registry) Register(c Command) error {
	names := append([]string{c.Name()}, c.Aliases()...)
	for _, name := range names {
		if _, exists := r.byName[name]; exists {
			return fmt.Errorf("command already registered: %s", name)
		}
	}
	for _, name := range names {
		r.byName[name] = c
	}
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns the registered commands sorted by primary name, with aliases
// collapsed onto their command.
func (r *Registry) All() []Command {
	byPrimary := make(map[string]Command)
	for _, cmd := range r.byName {
		byPrimary[cmd.Name()] = cmd
	}

	names := make([]string, 0, len(byPrimary))
	for name := range byPrimary {
		names = append(names, name)
	}
	sort.Strings(names)

	all := make([]Command, len(names))
	for i, name := range names {
		all[i] = byPrimary[name]
	}
	return all
}

// DefaultRegistry is the registry the command init functions register into.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry. A collision is a
// programmer error, caught at startup.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}

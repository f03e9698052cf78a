package shell

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// HandlerFunc runs a command with the remainder of the input line.
type HandlerFunc func(ctx context.Context, arg string) (Result, error)

// CompleteFunc returns argument candidates. text is the word under the
// cursor; begidx and endidx delimit it within line.
type CompleteFunc func(text, line string, begidx, endidx int) []string

// Command is a registered verb.
type Command struct {
	Name     string
	Help     string
	Run      HandlerFunc
	Complete CompleteFunc
}

// Registry maps verbs to commands.
type Registry struct {
	cmds map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{cmds: map[string]Command{}}
}

// Register adds a command. Registering an empty or duplicate name, or a
// command without a handler, panics: the command set is fixed at
// construction.
func (r *Registry) Register(cmd Command) {
	switch {
	case cmd.Name == "":
		panic("shell: command with empty name")
	case cmd.Run == nil:
		panic(fmt.Sprintf("shell: command %q has no handler", cmd.Name))
	}
	if _, dup := r.cmds[cmd.Name]; dup {
		panic(fmt.Sprintf("shell: duplicate command %q", cmd.Name))
	}
	r.cmds[cmd.Name] = cmd
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// Names returns all registered verbs, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.cmds))
}

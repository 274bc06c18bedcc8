package history

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Command is a reversible unit of work on a workflow document.
type Command interface {
	// CanExecute reports whether the command has anything to do.
	CanExecute() bool
	Execute() error
	Undo() error
	Redo() error
	// Label identifies the command in history listings.
	Label() string
}

var (
	// ErrEmptyGroup is returned when a group without commands is executed.
	ErrEmptyGroup = errors.New("group has no commands")

	// ErrNotExecutable is returned when a grouped command cannot execute at its turn.
	ErrNotExecutable = errors.New("command cannot execute")
)

// checker is implemented by commands that can tell why they cannot execute.
type checker interface {
	Check() error
}

// Group combines several commands into a single undo unit.
type Group struct {
	Name     string
	Commands []Command

	// number of children applied by the last Execute/Redo
	applied int
	failure error
}

// NewGroup creates a group named name.
func NewGroup(name string, cmds ...Command) *Group {
	return &Group{Name: name, Commands: cmds}
}

// CanExecute requires at least one child and no nil children. Each child is checked
// with its own CanExecute when its turn comes, after the previous children have run.
func (g *Group) CanExecute() bool {
	if len(g.Commands) == 0 {
		return false
	}

	for _, cmd := range g.Commands {
		if cmd == nil {
			return false
		}
	}

	return true
}

// Execute runs the children in order. If one cannot execute or fails, the children
// already applied are undone in reverse order and the failure is returned.
func (g *Group) Execute() error {
	return g.forward("execute", func(cmd Command) error {
		if !cmd.CanExecute() {
			return notExecutable(cmd)
		}

		return cmd.Execute()
	})
}

// Redo re-applies the children in order.
func (g *Group) Redo() error {
	return g.forward("redo", func(cmd Command) error { return cmd.Redo() })
}

// Undo reverts the children in reverse order.
func (g *Group) Undo() error {
	for i := len(g.Commands) - 1; i >= 0; i-- {
		if err := g.Commands[i].Undo(); err != nil {
			return fmt.Errorf("undo %q in group %q: %w", g.Commands[i].Label(), g.Name, err)
		}
	}

	g.applied = 0

	return nil
}

// Err returns the failure of the last Execute or Redo, or nil if it succeeded.
func (g *Group) Err() error {
	return g.failure
}

// Label returns the group name, or the joined child labels when the group is unnamed.
func (g *Group) Label() string {
	if g.Name != "" {
		return g.Name
	}

	labels := make([]string, 0, len(g.Commands))
	for _, cmd := range g.Commands {
		labels = append(labels, cmd.Label())
	}

	return strings.Join(labels, ", ")
}

func (g *Group) forward(op string, apply func(Command) error) error {
	g.failure = g.run(op, apply)

	return g.failure
}

func (g *Group) run(op string, apply func(Command) error) error {
	if len(g.Commands) == 0 {
		return ErrEmptyGroup
	}

	g.applied = 0

	for _, cmd := range g.Commands {
		if err := apply(cmd); err != nil {
			failure := fmt.Errorf("%s %q in group %q: %w", op, cmd.Label(), g.Name, err)

			for i := g.applied - 1; i >= 0; i-- {
				if undoErr := g.Commands[i].Undo(); undoErr != nil {
					return errors.Join(failure, fmt.Errorf("rollback %q: %w", g.Commands[i].Label(), undoErr))
				}
			}

			g.applied = 0

			return failure
		}

		g.applied++
	}

	return nil
}

func notExecutable(cmd Command) error {
	if c, ok := cmd.(checker); ok {
		if err := c.Check(); err != nil {
			return fmt.Errorf("%w: %w", ErrNotExecutable, err)
		}
	}

	return ErrNotExecutable
}

// sameCommand compares commands by identity. Values that cannot be compared, including
// structs holding a slice or map in an interface field, never match instead of panicking.
func sameCommand(a, b Command) bool {
	if a == nil || b == nil {
		return false
	}

	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.ValueOf(a).Comparable() ||
		!reflect.ValueOf(b).Comparable() {
		return false
	}

	return a == b
}

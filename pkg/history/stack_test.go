package history

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// fakeCommand records calls and can be told to fail.
type fakeCommand struct {
	label      string
	disabled   bool
	failExec   bool
	failUndo   bool
	failRedo   bool
	executions int
	undos      int
	redos      int
	log        *[]string
}

func newFake(label string, log *[]string) *fakeCommand {
	return &fakeCommand{label: label, log: log}
}

func (c *fakeCommand) CanExecute() bool { return !c.disabled }

func (c *fakeCommand) Execute() error {
	if c.failExec {
		return errBoom
	}

	c.executions++
	c.record("execute")

	return nil
}

func (c *fakeCommand) Undo() error {
	if c.failUndo {
		return errBoom
	}

	c.undos++
	c.record("undo")

	return nil
}

func (c *fakeCommand) Redo() error {
	if c.failRedo {
		return errBoom
	}

	c.redos++
	c.record("redo")

	return nil
}

func (c *fakeCommand) Label() string { return c.label }

func (c *fakeCommand) record(op string) {
	if c.log != nil {
		*c.log = append(*c.log, op+" "+c.label)
	}
}

// recorder captures availability notifications in order.
type recorder struct {
	events []string
}

func (r *recorder) attach(s *CommandStack) {
	s.OnCanUndo(func(v bool) { r.events = append(r.events, "undo="+boolString(v)) })
	s.OnCanRedo(func(v bool) { r.events = append(r.events, "redo="+boolString(v)) })
}

func boolString(v bool) string {
	if v {
		return "true"
	}

	return "false"
}

func labels(cmds []Command) []string {
	result := make([]string, len(cmds))
	for i, cmd := range cmds {
		result[i] = cmd.Label()
	}

	return result
}

func TestCommandStack_ExecuteClearsRedo(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	c1, c2 := newFake("c1", nil), newFake("c2", nil)

	s.Execute(c1)
	s.Undo()
	require.True(t, s.CanRedo())

	s.Execute(c2)

	assert.False(t, s.CanRedo())
	assert.Equal(t, []string{"c2"}, labels(s.UndoCommands()))
}

func TestCommandStack_CapacityEviction(t *testing.T) {
	t.Parallel()

	const limit = 3

	s := NewCommandStack(WithMaxUndo(limit))
	cmds := make([]*fakeCommand, limit+1)

	for i := range cmds {
		cmds[i] = newFake(string(rune('a'+i)), nil)
		s.Execute(cmds[i])
	}

	assert.Equal(t, limit, s.UndoCount())

	for s.CanUndo() {
		s.Undo()
	}

	assert.Equal(t, 0, cmds[0].undos, "oldest command must not be reachable")

	for _, cmd := range cmds[1:] {
		assert.Equal(t, 1, cmd.undos)
	}
}

func TestCommandStack_UndoRedoRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	c := newFake("c", nil)

	s.Execute(c)
	s.Undo()
	s.Redo()

	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.Equal(t, 1, s.UndoCount())
	assert.Equal(t, 1, c.executions)
	assert.Equal(t, 1, c.undos)
	assert.Equal(t, 1, c.redos)
}

func TestCommandStack_Notifications(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	rec := &recorder{}
	rec.attach(s)

	s.Execute(newFake("c", nil))
	assert.Equal(t, []string{"undo=true"}, rec.events)

	rec.events = nil
	s.Undo()
	assert.Equal(t, []string{"undo=false", "redo=true"}, rec.events)

	rec.events = nil
	s.Redo()
	assert.Equal(t, []string{"redo=false", "undo=true"}, rec.events)
}

func TestCommandStack_NotificationSeesConsistentState(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()

	var observed []bool

	s.OnCanRedo(func(v bool) {
		observed = append(observed, v == s.CanRedo())
	})
	s.OnCanUndo(func(v bool) {
		observed = append(observed, v == s.CanUndo())
	})

	s.Execute(newFake("a", nil))
	s.Undo()
	s.Redo()
	s.Undo()
	s.Execute(newFake("b", nil))
	s.ClearAll()

	require.NotEmpty(t, observed)

	for _, ok := range observed {
		assert.True(t, ok)
	}
}

func TestCommandStack_FailedExecuteIsInvisible(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	rec := &recorder{}
	rec.attach(s)

	failing := newFake("bad", nil)
	failing.failExec = true

	s.Execute(failing)

	assert.False(t, s.CanUndo())
	assert.Empty(t, rec.events)
}

func TestCommandStack_FailedExecuteKeepsRedo(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	s.Execute(newFake("a", nil))
	s.Undo()

	failing := newFake("bad", nil)
	failing.failExec = true
	s.Execute(failing)

	assert.True(t, s.CanRedo())
}

func TestCommandStack_NonExecutableAndNil(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	rec := &recorder{}
	rec.attach(s)

	disabled := newFake("disabled", nil)
	disabled.disabled = true

	s.Execute(disabled)
	s.Execute(nil)

	assert.Equal(t, 0, disabled.executions)
	assert.False(t, s.CanUndo())
	assert.Empty(t, rec.events)
}

func TestCommandStack_FailedUndoDropsCommand(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	rec := &recorder{}
	rec.attach(s)

	c := newFake("c", nil)
	c.failUndo = true

	s.Execute(c)
	rec.events = nil

	s.Undo()

	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.Equal(t, []string{"undo=false"}, rec.events)
}

func TestCommandStack_FailedRedoDropsCommand(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	c := newFake("c", nil)
	c.failRedo = true

	s.Execute(c)
	s.Undo()
	s.Redo()

	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestCommandStack_EmptyUndoRedoAreNoops(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	rec := &recorder{}
	rec.attach(s)

	s.Undo()
	s.Redo()

	assert.Empty(t, rec.events)
}

func TestCommandStack_RemoveCommand(t *testing.T) {
	t.Parallel()

	var calls []string

	s := NewCommandStack()
	c1, c2 := newFake("c1", &calls), newFake("c2", &calls)

	s.Execute(c1)
	s.Execute(c2)
	calls = nil

	s.RemoveCommand(c1)
	assert.Equal(t, []string{"c2"}, labels(s.UndoCommands()))

	s.Undo()
	s.Undo()

	assert.Equal(t, []string{"undo c2"}, calls)
}

func TestCommandStack_RemoveCommandNotifications(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		setup    func(s *CommandStack, c *fakeCommand)
		expected []string
	}{
		{
			name: "last undo entry",
			setup: func(s *CommandStack, c *fakeCommand) {
				s.Execute(c)
			},
			expected: []string{"undo=false"},
		},
		{
			name: "last redo entry",
			setup: func(s *CommandStack, c *fakeCommand) {
				s.Execute(c)
				s.Undo()
			},
			expected: []string{"redo=false"},
		},
		{
			name: "unknown command",
			setup: func(s *CommandStack, _ *fakeCommand) {
				s.Execute(newFake("other", nil))
			},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewCommandStack()
			c := newFake("target", nil)
			tt.setup(s, c)

			rec := &recorder{}
			rec.attach(s)

			s.RemoveCommand(c)

			assert.Equal(t, tt.expected, rec.events)
		})
	}
}

func TestCommandStack_RemoveCommandNonComparable(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	s.Execute(sliceCommand{"a"})

	assert.NotPanics(t, func() { s.RemoveCommand(sliceCommand{"a"}) })
	assert.Equal(t, 1, s.UndoCount())
}

func TestCommandStack_RemoveCommandHoldingSlice(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	s.Execute(boxedCommand{v: []int{1}})

	assert.NotPanics(t, func() { s.RemoveCommand(boxedCommand{v: []int{1}}) })
	assert.Equal(t, 1, s.UndoCount())

	s.Execute(boxedCommand{v: 7})
	s.RemoveCommand(boxedCommand{v: 7})
	assert.Equal(t, 1, s.UndoCount())
}

// sliceCommand is a non-comparable value command.
type sliceCommand []string

func (sliceCommand) CanExecute() bool { return true }
func (sliceCommand) Execute() error   { return nil }
func (sliceCommand) Undo() error      { return nil }
func (sliceCommand) Redo() error      { return nil }
func (sliceCommand) Label() string    { return "slice" }

// boxedCommand has a comparable type whose values may not be comparable.
type boxedCommand struct {
	v any
}

func (boxedCommand) CanExecute() bool { return true }
func (boxedCommand) Execute() error   { return nil }
func (boxedCommand) Undo() error      { return nil }
func (boxedCommand) Redo() error      { return nil }
func (boxedCommand) Label() string    { return "boxed" }

func TestCommandStack_Scenario(t *testing.T) {
	t.Parallel()

	s := NewCommandStack(WithMaxUndo(2))
	a, b, c, d := newFake("A", nil), newFake("B", nil), newFake("C", nil), newFake("D", nil)

	s.Execute(a)
	s.Execute(b)
	s.Execute(c)

	assert.Equal(t, []string{"B", "C"}, labels(s.UndoCommands()))
	assert.True(t, s.CanUndo())

	s.Undo()
	assert.Equal(t, []string{"C"}, labels(s.RedoCommands()))
	assert.Equal(t, []string{"B"}, labels(s.UndoCommands()))

	s.Execute(d)
	assert.Empty(t, s.RedoCommands())
	assert.Equal(t, []string{"B", "D"}, labels(s.UndoCommands()))
}

func TestCommandStack_ClearAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(s *CommandStack)
	}{
		{name: "empty", setup: func(*CommandStack) {}},
		{name: "undo only", setup: func(s *CommandStack) { s.Execute(newFake("a", nil)) }},
		{name: "both", setup: func(s *CommandStack) {
			s.Execute(newFake("a", nil))
			s.Execute(newFake("b", nil))
			s.Undo()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewCommandStack()
			tt.setup(s)

			rec := &recorder{}
			rec.attach(s)

			s.ClearAll()

			assert.False(t, s.CanUndo())
			assert.False(t, s.CanRedo())
			assert.Equal(t, []string{"undo=false", "redo=false"}, rec.events)
		})
	}
}

func TestCommandStack_ClearSingleStacks(t *testing.T) {
	t.Parallel()

	s := NewCommandStack()
	rec := &recorder{}
	rec.attach(s)

	s.ClearUndoStack()
	s.ClearRedoStack()
	assert.Empty(t, rec.events, "clearing empty stacks is not a transition")

	s.Execute(newFake("a", nil))
	s.Execute(newFake("b", nil))
	s.Undo()
	rec.events = nil

	s.ClearRedoStack()
	assert.Equal(t, []string{"redo=false"}, rec.events)
	assert.True(t, s.CanUndo())

	rec.events = nil
	s.ClearUndoStack()
	assert.Equal(t, []string{"undo=false"}, rec.events)
}

func TestCommandStack_SetUndoLimit(t *testing.T) {
	t.Parallel()

	s := NewCommandStack(WithMaxUndo(5))
	for i := range 4 {
		s.Execute(newFake(string(rune('a'+i)), nil))
	}

	s.SetUndoLimit(2)
	assert.Equal(t, 4, s.UndoCount(), "existing history is kept")
	assert.Equal(t, 2, s.UndoLimit())

	s.SetUndoLimit(0)
	assert.Equal(t, 2, s.UndoLimit(), "non-positive limits are ignored")

	s.Execute(newFake("e", nil))
	assert.Equal(t, []string{"d", "e"}, labels(s.UndoCommands()))
}

func TestCommandStack_DefaultLimit(t *testing.T) {
	t.Parallel()

	s := NewCommandStack(WithMaxUndo(-1))
	assert.Equal(t, DefaultMaxUndo, s.UndoLimit())
}

func TestCommandStack_PeekAndEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewCommandStack(withClock(func() time.Time { return now }))

	_, ok := s.PeekUndo()
	assert.False(t, ok)

	a, b := newFake("a", nil), newFake("b", nil)
	s.Execute(a)
	s.Execute(b)
	s.Undo()

	top, ok := s.PeekUndo()
	require.True(t, ok)
	assert.Same(t, a, top)

	redo, ok := s.PeekRedo()
	require.True(t, ok)
	assert.Same(t, b, redo)

	assert.Equal(t, []EntryInfo{{Label: "a", PushedAt: now}}, s.UndoEntries())
	assert.Equal(t, []EntryInfo{{Label: "b", PushedAt: now}}, s.RedoEntries())
}

package history

import (
	"log/slog"
	"time"
)

// DefaultMaxUndo is the undo capacity of a stack created without WithMaxUndo.
const DefaultMaxUndo = 50

// entry wraps a command with the time it was pushed.
type entry struct {
	command  Command
	pushedAt time.Time
}

// EntryInfo describes a command held by the stack.
type EntryInfo struct {
	Label    string    `json:"label"`
	PushedAt time.Time `json:"pushed_at"`
}

// Option configures a CommandStack.
type Option func(*CommandStack)

// WithMaxUndo sets the undo capacity. Non-positive values are ignored.
func WithMaxUndo(n int) Option {
	return func(s *CommandStack) {
		if n > 0 {
			s.maxUndo = n
		}
	}
}

// WithLogger sets the logger used to report absorbed command failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *CommandStack) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// withClock replaces time.Now, for tests.
func withClock(now func() time.Time) Option {
	return func(s *CommandStack) {
		s.now = now
	}
}

// CommandStack keeps a linear undo/redo history of executed commands.
// It is not safe for concurrent use; owners serialize access.
type CommandStack struct {
	undoStack []*entry
	redoStack []*entry
	maxUndo   int

	canUndoObservers []func(bool)
	canRedoObservers []func(bool)

	logger *slog.Logger
	now    func() time.Time
}

// NewCommandStack creates an empty stack.
func NewCommandStack(opts ...Option) *CommandStack {
	s := &CommandStack{
		maxUndo: DefaultMaxUndo,
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// OnCanUndo registers an observer called whenever CanUndo changes value.
func (s *CommandStack) OnCanUndo(fn func(available bool)) {
	if fn != nil {
		s.canUndoObservers = append(s.canUndoObservers, fn)
	}
}

// OnCanRedo registers an observer called whenever CanRedo changes value.
func (s *CommandStack) OnCanRedo(fn func(available bool)) {
	if fn != nil {
		s.canRedoObservers = append(s.canRedoObservers, fn)
	}
}

// Execute runs cmd and records it for undo. Nil or non-executable commands are ignored;
// a failing command leaves history untouched.
func (s *CommandStack) Execute(cmd Command) {
	if cmd == nil || !cmd.CanExecute() {
		return
	}

	if err := cmd.Execute(); err != nil {
		s.logger.Warn("Command execution failed", "command", cmd.Label(), "error", err)

		return
	}

	s.pushUndo(cmd)

	if len(s.redoStack) > 0 {
		s.redoStack = nil
		s.notifyCanRedo(false)
	}
}

// Undo reverts the most recent command. A command whose Undo fails is discarded.
func (s *CommandStack) Undo() {
	if len(s.undoStack) == 0 {
		return
	}

	top := s.undoStack[len(s.undoStack)-1]
	s.undoStack[len(s.undoStack)-1] = nil
	s.undoStack = s.undoStack[:len(s.undoStack)-1]

	if len(s.undoStack) == 0 {
		s.notifyCanUndo(false)
	}

	if err := top.command.Undo(); err != nil {
		s.logger.Warn("Command undo failed, dropping it from history", "command", top.command.Label(), "error", err)

		return
	}

	top.pushedAt = s.now()
	s.redoStack = append(s.redoStack, top)

	if len(s.redoStack) == 1 {
		s.notifyCanRedo(true)
	}
}

// Redo re-applies the most recently undone command. A command whose Redo fails is discarded.
func (s *CommandStack) Redo() {
	if len(s.redoStack) == 0 {
		return
	}

	top := s.redoStack[len(s.redoStack)-1]
	s.redoStack[len(s.redoStack)-1] = nil
	s.redoStack = s.redoStack[:len(s.redoStack)-1]

	if len(s.redoStack) == 0 {
		s.notifyCanRedo(false)
	}

	if err := top.command.Redo(); err != nil {
		s.logger.Warn("Command redo failed, dropping it from history", "command", top.command.Label(), "error", err)

		return
	}

	s.pushUndo(top.command)
}

// pushUndo records cmd on the undo stack and enforces the capacity.
func (s *CommandStack) pushUndo(cmd Command) {
	s.undoStack = append(s.undoStack, &entry{command: cmd, pushedAt: s.now()})

	if len(s.undoStack) == 1 {
		s.notifyCanUndo(true)
	}

	if excess := len(s.undoStack) - s.maxUndo; excess > 0 {
		kept := make([]*entry, s.maxUndo)
		copy(kept, s.undoStack[excess:])
		s.undoStack = kept
	}
}

// CanUndo reports whether there is a command to undo.
func (s *CommandStack) CanUndo() bool {
	return len(s.undoStack) > 0
}

// CanRedo reports whether there is a command to redo.
func (s *CommandStack) CanRedo() bool {
	return len(s.redoStack) > 0
}

// UndoCount returns the number of commands available for undo.
func (s *CommandStack) UndoCount() int {
	return len(s.undoStack)
}

// RedoCount returns the number of commands available for redo.
func (s *CommandStack) RedoCount() int {
	return len(s.redoStack)
}

// SetUndoLimit changes the undo capacity for future pushes. Existing history is not
// truncated. Non-positive values are ignored.
func (s *CommandStack) SetUndoLimit(n int) {
	if n <= 0 {
		return
	}

	s.maxUndo = n
}

// UndoLimit returns the undo capacity.
func (s *CommandStack) UndoLimit() int {
	return s.maxUndo
}

// ClearUndoStack drops all undo history.
func (s *CommandStack) ClearUndoStack() {
	if len(s.undoStack) == 0 {
		return
	}

	s.undoStack = nil
	s.notifyCanUndo(false)
}

// ClearRedoStack drops all redo history.
func (s *CommandStack) ClearRedoStack() {
	if len(s.redoStack) == 0 {
		return
	}

	s.redoStack = nil
	s.notifyCanRedo(false)
}

// ClearAll drops both histories. Both observers are told availability is false even when
// the stacks were already empty.
func (s *CommandStack) ClearAll() {
	s.undoStack = nil
	s.redoStack = nil

	s.notifyCanUndo(false)
	s.notifyCanRedo(false)
}

// RemoveCommand removes cmd from the undo stack, or else from the redo stack, without
// undoing or redoing it. Unknown commands are ignored.
func (s *CommandStack) RemoveCommand(cmd Command) {
	if i := indexOf(s.undoStack, cmd); i >= 0 {
		s.undoStack = removeAt(s.undoStack, i)
		if len(s.undoStack) == 0 {
			s.notifyCanUndo(false)
		}

		return
	}

	if i := indexOf(s.redoStack, cmd); i >= 0 {
		s.redoStack = removeAt(s.redoStack, i)
		if len(s.redoStack) == 0 {
			s.notifyCanRedo(false)
		}
	}
}

// PeekUndo returns the command Undo would revert.
func (s *CommandStack) PeekUndo() (Command, bool) {
	if len(s.undoStack) == 0 {
		return nil, false
	}

	return s.undoStack[len(s.undoStack)-1].command, true
}

// PeekRedo returns the command Redo would re-apply.
func (s *CommandStack) PeekRedo() (Command, bool) {
	if len(s.redoStack) == 0 {
		return nil, false
	}

	return s.redoStack[len(s.redoStack)-1].command, true
}

// UndoCommands returns the undo stack, oldest first.
func (s *CommandStack) UndoCommands() []Command {
	return commands(s.undoStack)
}

// RedoCommands returns the redo stack, oldest first.
func (s *CommandStack) RedoCommands() []Command {
	return commands(s.redoStack)
}

// UndoEntries describes the undo stack, oldest first.
func (s *CommandStack) UndoEntries() []EntryInfo {
	return entries(s.undoStack)
}

// RedoEntries describes the redo stack, oldest first.
func (s *CommandStack) RedoEntries() []EntryInfo {
	return entries(s.redoStack)
}

func (s *CommandStack) notifyCanUndo(available bool) {
	for _, fn := range s.canUndoObservers {
		fn(available)
	}
}

func (s *CommandStack) notifyCanRedo(available bool) {
	for _, fn := range s.canRedoObservers {
		fn(available)
	}
}

func indexOf(stack []*entry, cmd Command) int {
	for i, e := range stack {
		if sameCommand(e.command, cmd) {
			return i
		}
	}

	return -1
}

func removeAt(stack []*entry, i int) []*entry {
	copy(stack[i:], stack[i+1:])
	stack[len(stack)-1] = nil

	return stack[:len(stack)-1]
}

func commands(stack []*entry) []Command {
	result := make([]Command, len(stack))
	for i, e := range stack {
		result[i] = e.command
	}

	return result
}

func entries(stack []*entry) []EntryInfo {
	result := make([]EntryInfo, len(stack))
	for i, e := range stack {
		result[i] = EntryInfo{
			Label:    e.command.Label(),
			PushedAt: e.pushedAt,
		}
	}

	return result
}

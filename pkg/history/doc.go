// Package history provides the undo/redo command stack used by workflow editing sessions.
//
// Edits to a workflow document are expressed as reversible commands. A CommandStack
// executes them, keeps the most recent ones for undo and the undone ones for redo:
//
//	stack := history.NewCommandStack(history.WithMaxUndo(50))
//	stack.OnCanUndo(func(available bool) { ... })
//
//	stack.Execute(cmd)
//	stack.Undo()
//	stack.Redo()
//
// # Failure policy
//
// The stack never returns errors. A command whose Execute fails is not recorded; a command
// whose Undo or Redo fails is dropped from history. Failures are logged and otherwise
// absorbed, so callers that need to know whether an edit landed compare PeekUndo with the
// command they submitted.
//
// # Notifications
//
// OnCanUndo and OnCanRedo observers fire synchronously on every change of CanUndo and
// CanRedo, after the stacks have been updated.
//
// # Grouping
//
// Group bundles several commands into a single undo unit.
package history

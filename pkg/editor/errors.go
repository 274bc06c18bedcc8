// Package editor manages editing sessions: one workflow document and its undo history per session.
package editor

import (
	"errors"
	"fmt"

	"github.com/dukex/operion-editor/pkg/persistence"
)

var (
	// ErrSessionNotFound indicates no open session has the given ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrWorkflowNotFound indicates the workflow to open does not exist.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

	// ErrWorkflowNotEditable indicates the workflow is not a draft.
	ErrWorkflowNotEditable = errors.New("workflow is not editable")

	// ErrInvalidCommand indicates a command request could not be turned into a command.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrInvalidRequest indicates a session request failed validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrCommandFailed indicates a command was accepted but failed while applying.
	ErrCommandFailed = errors.New("command failed to apply")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// SessionError wraps a session failure with the operation and session it concerns.
type SessionError struct {
	Op        string
	SessionID string
	Err       error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func (e *SessionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newSessionError(op, sessionID string, err error) *SessionError {
	return &SessionError{Op: op, SessionID: sessionID, Err: err}
}

// IsNotFound reports whether err means a session or workflow does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrWorkflowNotFound)
}

// IsValidationError reports whether err was caused by a malformed request.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidCommand) || errors.Is(err, ErrInvalidRequest)
}

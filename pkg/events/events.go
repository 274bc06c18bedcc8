// Package events defines the notifications emitted by workflow editing sessions.
package events

import (
	"time"
)

type EventType string

// Topic is the topic editor events are published to.
const Topic = "operion.editor.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Session lifecycle events.
	SessionOpenedEvent EventType = "editor.session.opened"
	SessionClosedEvent EventType = "editor.session.closed"

	// Editing events.
	HistoryChangedEvent EventType = "editor.history.changed"
	CommandAppliedEvent EventType = "editor.command.applied"
	WorkflowSavedEvent  EventType = "editor.workflow.saved"
)

// CommandAction tells how a command reached the workflow.
type CommandAction string

const (
	CommandActionExecute CommandAction = "execute"
	CommandActionUndo    CommandAction = "undo"
	CommandActionRedo    CommandAction = "redo"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	SessionID  string         `json:"session_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// HistoryChanged is emitted when undo or redo availability of a session changes.
type HistoryChanged struct {
	BaseEvent

	CanUndo   bool `json:"can_undo"`
	CanRedo   bool `json:"can_redo"`
	UndoCount int  `json:"undo_count"`
	RedoCount int  `json:"redo_count"`
}

func (h HistoryChanged) GetType() EventType {
	return HistoryChangedEvent
}

// CommandApplied is emitted after a command was executed, undone or redone.
type CommandApplied struct {
	BaseEvent

	Action CommandAction `json:"action"`
	Label  string        `json:"label"`
}

func (c CommandApplied) GetType() EventType {
	return CommandAppliedEvent
}

type WorkflowSaved struct {
	BaseEvent

	Autosave bool `json:"autosave"`
}

func (w WorkflowSaved) GetType() EventType {
	return WorkflowSavedEvent
}

type SessionOpened struct {
	BaseEvent

	Owner string `json:"owner,omitempty"`
}

func (s SessionOpened) GetType() EventType {
	return SessionOpenedEvent
}

type SessionClosed struct {
	BaseEvent

	Saved bool `json:"saved"`
}

func (s SessionClosed) GetType() EventType {
	return SessionClosedEvent
}

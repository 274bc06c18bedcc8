package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/operion-editor/pkg/commands"
	"github.com/dukex/operion-editor/pkg/eventbus"
	"github.com/dukex/operion-editor/pkg/events"
	"github.com/dukex/operion-editor/pkg/history"
	"github.com/dukex/operion-editor/pkg/models"
	"github.com/dukex/operion-editor/pkg/otelhelper"
	"github.com/dukex/operion-editor/pkg/palette"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ApplyResult reports the outcome of an edit, undo or redo.
type ApplyResult struct {
	Applied bool   `json:"applied"`
	Label   string `json:"label,omitempty"`
	// Reason explains why the command was not applied.
	Reason error `json:"-"`
}

// State is a snapshot of a session.
type State struct {
	SessionID string           `json:"session_id"`
	Workflow  *models.Workflow `json:"workflow"`
	Owner     string           `json:"owner,omitempty"`
	CanUndo   bool             `json:"can_undo"`
	CanRedo   bool             `json:"can_redo"`
	UndoCount int              `json:"undo_count"`
	RedoCount int              `json:"redo_count"`
	UndoLimit int              `json:"undo_limit"`
	UndoLabel string           `json:"undo_label,omitempty"`
	RedoLabel string           `json:"redo_label,omitempty"`
	Dirty     bool             `json:"dirty"`
	OpenedAt  time.Time        `json:"opened_at"`
	SavedAt   *time.Time       `json:"saved_at,omitempty"`
}

// History lists the commands of a session, oldest first.
type History struct {
	Undo  []history.EntryInfo `json:"undo"`
	Redo  []history.EntryInfo `json:"redo"`
	Limit int                 `json:"limit"`
}

// Session edits one workflow. Every method is safe for concurrent use.
type Session struct {
	id       string
	owner    string
	openedAt time.Time

	mu       sync.Mutex
	workflow *models.Workflow
	stack    *history.CommandStack
	builder  commandBuilder
	dirty    bool
	revision int
	savedAt  *time.Time

	// set by stack observers, published once the operation that caused it returns
	historyChanged bool

	bus    eventbus.EventBus
	tracer trace.Tracer
	logger *slog.Logger
}

func newSession(
	id string,
	owner string,
	workflow *models.Workflow,
	pal *palette.Palette,
	undoLimit int,
	bus eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Session {
	logger = logger.With("session_id", id, "workflow_id", workflow.ID)

	s := &Session{
		id:       id,
		owner:    owner,
		openedAt: time.Now().UTC(),
		workflow: workflow,
		stack:    history.NewCommandStack(history.WithMaxUndo(undoLimit), history.WithLogger(logger)),
		builder:  commandBuilder{workflow: workflow, palette: pal},
		bus:      bus,
		tracer:   tracer,
		logger:   logger,
	}

	s.stack.OnCanUndo(func(bool) { s.historyChanged = true })
	s.stack.OnCanRedo(func(bool) { s.historyChanged = true })

	return s
}

func (s *Session) ID() string {
	return s.id
}

// WorkflowID returns the ID of the edited workflow.
func (s *Session) WorkflowID() string {
	return s.workflow.ID
}

// Apply builds the command described by req and executes it through the undo history.
// A command whose preconditions fail, or that fails while applying, leaves the workflow
// unchanged and is reported with Applied false and a Reason.
func (s *Session) Apply(ctx context.Context, req CommandRequest) (ApplyResult, error) {
	ctx, span := s.startSpan(ctx, events.CommandActionExecute, attribute.String(otelhelper.CommandKindKey, string(req.Kind)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, err := s.builder.build(req)
	if err != nil {
		otelhelper.SetError(span, err)

		return ApplyResult{}, newSessionError("apply", s.id, err)
	}

	span.SetAttributes(attribute.String(otelhelper.CommandLabelKey, cmd.Label()))

	reason := commands.Explain(cmd)

	s.stack.Execute(cmd)

	top, ok := s.stack.PeekUndo()
	if !ok || top != cmd {
		if reason == nil {
			reason = ErrCommandFailed
		}

		if group, isGroup := cmd.(*history.Group); isGroup && group.Err() != nil {
			reason = fmt.Errorf("%w: %w", ErrCommandFailed, group.Err())
		}

		s.logger.DebugContext(ctx, "command not applied", "kind", req.Kind, "label", cmd.Label(), "reason", reason)
		s.flush(ctx)

		return ApplyResult{Label: cmd.Label(), Reason: reason}, nil
	}

	s.touch()
	s.publishApplied(ctx, events.CommandActionExecute, cmd.Label())
	s.flush(ctx)

	return ApplyResult{Applied: true, Label: cmd.Label()}, nil
}

// Undo reverses the most recent command.
func (s *Session) Undo(ctx context.Context) ApplyResult {
	ctx, span := s.startSpan(ctx, events.CommandActionUndo)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, ok := s.stack.PeekUndo()
	if !ok {
		return ApplyResult{Reason: ErrNothingToUndo}
	}

	s.stack.Undo()

	result := s.moved(ctx, cmd, s.stack.PeekRedo, events.CommandActionUndo)
	s.flush(ctx)

	return result
}

// Redo re-applies the most recently undone command.
func (s *Session) Redo(ctx context.Context) ApplyResult {
	ctx, span := s.startSpan(ctx, events.CommandActionRedo)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, ok := s.stack.PeekRedo()
	if !ok {
		return ApplyResult{Reason: ErrNothingToRedo}
	}

	s.stack.Redo()

	result := s.moved(ctx, cmd, s.stack.PeekUndo, events.CommandActionRedo)
	s.flush(ctx)

	return result
}

// moved reports whether cmd reached the stack returned by peek. A command that failed
// to undo or redo is dropped from the history instead.
func (s *Session) moved(
	ctx context.Context,
	cmd history.Command,
	peek func() (history.Command, bool),
	action events.CommandAction,
) ApplyResult {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(otelhelper.CommandLabelKey, cmd.Label()))

	top, ok := peek()
	if !ok || top != cmd {
		s.logger.WarnContext(ctx, "command dropped from history", "action", action, "label", cmd.Label())

		return ApplyResult{Label: cmd.Label(), Reason: ErrCommandFailed}
	}

	s.touch()
	s.publishApplied(ctx, action, cmd.Label())

	return ApplyResult{Applied: true, Label: cmd.Label()}
}

// State returns a snapshot of the workflow and its history.
func (s *Session) State() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	workflow, err := s.workflow.Clone()
	if err != nil {
		return State{}, err
	}

	state := State{
		SessionID: s.id,
		Workflow:  workflow,
		Owner:     s.owner,
		CanUndo:   s.stack.CanUndo(),
		CanRedo:   s.stack.CanRedo(),
		UndoCount: s.stack.UndoCount(),
		RedoCount: s.stack.RedoCount(),
		UndoLimit: s.stack.UndoLimit(),
		Dirty:     s.dirty,
		OpenedAt:  s.openedAt,
		SavedAt:   s.savedAt,
	}

	if cmd, ok := s.stack.PeekUndo(); ok {
		state.UndoLabel = cmd.Label()
	}

	if cmd, ok := s.stack.PeekRedo(); ok {
		state.RedoLabel = cmd.Label()
	}

	return state, nil
}

// History lists the labels of the undoable and redoable commands.
func (s *Session) History() History {
	s.mu.Lock()
	defer s.mu.Unlock()

	return History{
		Undo:  s.stack.UndoEntries(),
		Redo:  s.stack.RedoEntries(),
		Limit: s.stack.UndoLimit(),
	}
}

// SetUndoLimit changes how many commands can be undone. Existing history is kept even
// when it exceeds the new limit; it shrinks as new commands are executed.
func (s *Session) SetUndoLimit(n int) error {
	if n <= 0 {
		return newSessionError("set undo limit", s.id, fmt.Errorf("%w: limit must be positive", ErrInvalidRequest))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stack.SetUndoLimit(n)

	return nil
}

// ClearHistory forgets every undoable and redoable command. The workflow is unchanged.
func (s *Session) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stack.ClearAll()
	s.flush(ctx)
}

// ForgetNode removes every command that edits the node from the history and returns how
// many were removed.
func (s *Session) ForgetNode(ctx context.Context, nodeID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for _, cmd := range append(s.stack.UndoCommands(), s.stack.RedoCommands()...) {
		if commands.ReferencesNode(cmd, nodeID) {
			s.stack.RemoveCommand(cmd)

			removed++
		}
	}

	if removed > 0 {
		s.logger.InfoContext(ctx, "forgot node history", "node_id", nodeID, "commands", removed)
	}

	s.flush(ctx)

	return removed
}

// snapshot returns a copy of the workflow to save with the revision it reflects.
func (s *Session) snapshot() (*models.Workflow, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	workflow, err := s.workflow.Clone()
	if err != nil {
		return nil, 0, err
	}

	return workflow, s.revision, nil
}

// markSaved records a successful save of revision. Edits made while saving keep the
// session dirty.
func (s *Session) markSaved(saved *models.Workflow, revision int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflow.CreatedAt = saved.CreatedAt
	s.workflow.UpdatedAt = saved.UpdatedAt

	savedAt := saved.UpdatedAt
	s.savedAt = &savedAt

	if s.revision == revision {
		s.dirty = false
	}
}

// close drops the history of a session that is going away.
func (s *Session) close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stack.ClearAll()
	s.flush(ctx)
}

// nolint:spancheck // the caller ends the span
func (s *Session) startSpan(
	ctx context.Context,
	action events.CommandAction,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String(otelhelper.SessionIDKey, s.id),
		attribute.String(otelhelper.WorkflowIDKey, s.workflow.ID),
		attribute.String(otelhelper.CommandActionKey, string(action)),
	)

	return otelhelper.StartSpan(ctx, s.tracer, "editor.command."+string(action), attrs...)
}

func (s *Session) isDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dirty
}

func (s *Session) touch() {
	s.dirty = true
	s.revision++
}

// flush publishes a history change recorded by the stack observers. Callers hold mu.
func (s *Session) flush(ctx context.Context) {
	if !s.historyChanged {
		return
	}

	s.historyChanged = false

	s.publish(ctx, events.HistoryChanged{
		BaseEvent: s.baseEvent(events.HistoryChangedEvent),
		CanUndo:   s.stack.CanUndo(),
		CanRedo:   s.stack.CanRedo(),
		UndoCount: s.stack.UndoCount(),
		RedoCount: s.stack.RedoCount(),
	})
}

func (s *Session) publishApplied(ctx context.Context, action events.CommandAction, label string) {
	s.publish(ctx, events.CommandApplied{
		BaseEvent: s.baseEvent(events.CommandAppliedEvent),
		Action:    action,
		Label:     label,
	})
}

func (s *Session) baseEvent(eventType events.EventType) events.BaseEvent {
	event := events.BaseEvent{
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: s.workflow.ID,
		SessionID:  s.id,
	}

	if s.bus != nil {
		event.ID = s.bus.GenerateID()
	}

	return event
}

// publish sends event to the bus. Delivery failures are logged; edits never fail because of them.
func (s *Session) publish(ctx context.Context, event eventbus.Event) {
	if s.bus == nil {
		return
	}

	err := s.bus.Publish(ctx, s.workflow.ID, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

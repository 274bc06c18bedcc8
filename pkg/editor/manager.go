package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dukex/operion-editor/pkg/eventbus"
	"github.com/dukex/operion-editor/pkg/events"
	"github.com/dukex/operion-editor/pkg/history"
	"github.com/dukex/operion-editor/pkg/models"
	"github.com/dukex/operion-editor/pkg/otelhelper"
	"github.com/dukex/operion-editor/pkg/palette"
	"github.com/dukex/operion-editor/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CreateRequest describes a new draft workflow.
type CreateRequest struct {
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description" validate:"required"`
	Owner       string         `json:"owner"`
	Variables   map[string]any `json:"variables"`
}

// SessionInfo summarizes an open session.
type SessionInfo struct {
	ID         string    `json:"id"`
	WorkflowID string    `json:"workflow_id"`
	Owner      string    `json:"owner,omitempty"`
	Dirty      bool      `json:"dirty"`
	OpenedAt   time.Time `json:"opened_at"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithUndoLimit sets the undo capacity of new sessions.
func WithUndoLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.undoLimit = n
		}
	}
}

// WithTracer sets the tracer used for session spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager owns the open editing sessions.
type Manager struct {
	persistence persistence.Persistence
	palette     *palette.Palette
	bus         eventbus.EventBus
	tracer      trace.Tracer
	logger      *slog.Logger
	undoLimit   int

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager. bus may be nil to disable notifications.
func NewManager(p persistence.Persistence, pal *palette.Palette, bus eventbus.EventBus, opts ...Option) *Manager {
	m := &Manager{
		persistence: p,
		palette:     pal,
		bus:         bus,
		tracer:      otelhelper.NoopTracer(),
		logger:      slog.Default(),
		undoLimit:   history.DefaultMaxUndo,
		sessions:    make(map[string]*Session),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Palette returns the node types sessions can place.
func (m *Manager) Palette() *palette.Palette {
	return m.palette
}

// Workflows lists the stored workflows.
func (m *Manager) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := m.persistence.WorkflowRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// HealthCheck checks the persistence layer.
func (m *Manager) HealthCheck(ctx context.Context) error {
	return m.persistence.HealthCheck(ctx)
}

// Create stores a new draft workflow and opens a session on it.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*Session, error) {
	ctx, span := otelhelper.StartSpan(ctx, m.tracer, "editor.session.create",
		attribute.String(otelhelper.WorkflowNameKey, req.Name))
	defer span.End()

	err := validate.Struct(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	id := uuid.NewString()
	workflow := &models.Workflow{
		ID:              id,
		Name:            req.Name,
		Description:     req.Description,
		Status:          models.WorkflowStatusDraft,
		WorkflowGroupID: id,
		Nodes:           []*models.WorkflowNode{},
		Connections:     []*models.Connection{},
		Variables:       req.Variables,
		Owner:           req.Owner,
	}

	err = m.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return m.open(ctx, workflow, req.Owner), nil
}

// Open starts a session on a stored draft workflow. A workflow already being edited
// returns its existing session.
func (m *Manager) Open(ctx context.Context, workflowID, owner string) (*Session, error) {
	ctx, span := otelhelper.StartSpan(ctx, m.tracer, "editor.session.open",
		attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer span.End()

	if session, ok := m.findByWorkflow(workflowID); ok {
		return session, nil
	}

	workflow, err := m.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
	}

	if workflow == nil {
		return nil, persistence.NewWorkflowError("Open", workflowID, ErrWorkflowNotFound)
	}

	if !workflow.IsEditable() {
		return nil, persistence.NewWorkflowError("Open", workflowID, ErrWorkflowNotEditable)
	}

	return m.open(ctx, workflow, owner), nil
}

func (m *Manager) open(ctx context.Context, workflow *models.Workflow, owner string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	// a concurrent Open may have won the race
	for _, existing := range m.sessions {
		if existing.WorkflowID() == workflow.ID {
			return existing
		}
	}

	session := newSession(uuid.NewString(), owner, workflow, m.palette, m.undoLimit, m.bus, m.tracer, m.logger)
	m.sessions[session.ID()] = session

	trace.SpanFromContext(ctx).SetAttributes(attribute.String(otelhelper.SessionIDKey, session.ID()))
	m.logger.InfoContext(ctx, "session opened", "session_id", session.ID(), "workflow_id", workflow.ID)

	session.publish(ctx, events.SessionOpened{
		BaseEvent: session.baseEvent(events.SessionOpenedEvent),
		Owner:     owner,
	})

	return session
}

func (m *Manager) findByWorkflow(workflowID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, session := range m.sessions {
		if session.WorkflowID() == workflowID {
			return session, true
		}
	}

	return nil, false
}

// Get returns an open session.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, newSessionError("get", sessionID, ErrSessionNotFound)
	}

	return session, nil
}

// List summarizes the open sessions, oldest first.
func (m *Manager) List() []SessionInfo {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))

	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, SessionInfo{
			ID:         session.ID(),
			WorkflowID: session.WorkflowID(),
			Owner:      session.owner,
			Dirty:      session.isDirty(),
			OpenedAt:   session.openedAt,
		})
	}

	slices.SortFunc(infos, func(a, b SessionInfo) int {
		if c := a.OpenedAt.Compare(b.OpenedAt); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})

	return infos
}

// Save writes the session workflow to persistence.
func (m *Manager) Save(ctx context.Context, sessionID string) error {
	session, err := m.Get(sessionID)
	if err != nil {
		return err
	}

	return m.save(ctx, session, false)
}

// SaveDirty saves every session with unsaved edits and returns how many were saved.
func (m *Manager) SaveDirty(ctx context.Context) (int, error) {
	m.mu.RLock()
	dirty := make([]*Session, 0, len(m.sessions))

	for _, session := range m.sessions {
		if session.isDirty() {
			dirty = append(dirty, session)
		}
	}
	m.mu.RUnlock()

	var (
		saved int
		errs  []error
	)

	for _, session := range dirty {
		err := m.save(ctx, session, true)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		saved++
	}

	return saved, errors.Join(errs...)
}

func (m *Manager) save(ctx context.Context, session *Session, autosave bool) error {
	ctx, span := otelhelper.StartSpan(ctx, m.tracer, "editor.session.save",
		attribute.String(otelhelper.SessionIDKey, session.ID()),
		attribute.String(otelhelper.WorkflowIDKey, session.WorkflowID()),
		attribute.Bool("operion.editor.autosave", autosave))
	defer span.End()

	workflow, revision, err := session.snapshot()
	if err != nil {
		otelhelper.SetError(span, err)

		return newSessionError("save", session.ID(), err)
	}

	err = m.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		otelhelper.SetError(span, err)

		return newSessionError("save", session.ID(), err)
	}

	session.markSaved(workflow, revision)

	m.logger.InfoContext(ctx, "workflow saved", "session_id", session.ID(), "workflow_id", workflow.ID, "autosave", autosave)

	session.mu.Lock()
	session.publish(ctx, events.WorkflowSaved{
		BaseEvent: session.baseEvent(events.WorkflowSavedEvent),
		Autosave:  autosave,
	})
	session.mu.Unlock()

	return nil
}

// Close ends a session, optionally saving it first. Its history is discarded.
func (m *Manager) Close(ctx context.Context, sessionID string, save bool) error {
	ctx, span := otelhelper.StartSpan(ctx, m.tracer, "editor.session.close",
		attribute.String(otelhelper.SessionIDKey, sessionID))
	defer span.End()

	session, err := m.Get(sessionID)
	if err != nil {
		return err
	}

	if save {
		err = m.save(ctx, session, false)
		if err != nil {
			otelhelper.SetError(span, err)

			return err
		}
	}

	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	session.close(ctx)

	session.mu.Lock()
	session.publish(ctx, events.SessionClosed{
		BaseEvent: session.baseEvent(events.SessionClosedEvent),
		Saved:     save,
	})
	session.mu.Unlock()

	m.logger.InfoContext(ctx, "session closed", "session_id", sessionID, "saved", save)

	return nil
}

// CloseAll closes every session, saving the dirty ones.
func (m *Manager) CloseAll(ctx context.Context) error {
	var errs []error

	for _, info := range m.List() {
		err := m.Close(ctx, info.ID, info.Dirty)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

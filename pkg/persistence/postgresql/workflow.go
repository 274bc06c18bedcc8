package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/operion-editor/pkg/models"
	"github.com/dukex/operion-editor/pkg/persistence"
	"github.com/google/uuid"
)

const selectWorkflow = `
	SELECT
		id
	  , name
	  , description
	  , status
	  , workflow_group_id
	  , nodes
	  , connections
	  , variables
	  , metadata
	  , owner
	  , created_at
	  , updated_at
	  , published_at
	  , deleted_at
	FROM workflows
`

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// GetAll returns all workflows from the database.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	query := selectWorkflow + `
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func(ctx context.Context, r *WorkflowRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := r.scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := selectWorkflow + `
		WHERE id = $1 AND deleted_at IS NULL
	`

	workflow, err := r.scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return workflow, nil
}

// Save inserts or updates a workflow.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow ID: %w", err)
		}

		workflow.ID = id.String()
	}

	documents, err := marshalDocuments(workflow)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	query := `
		INSERT INTO workflows (id, name, description, status, workflow_group_id, nodes, connections,
variables, metadata, owner, created_at, updated_at, published_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			workflow_group_id = EXCLUDED.workflow_group_id,
			nodes = EXCLUDED.nodes,
			connections = EXCLUDED.connections,
			variables = EXCLUDED.variables,
			metadata = EXCLUDED.metadata,
			owner = EXCLUDED.owner,
			updated_at = EXCLUDED.updated_at,
			published_at = EXCLUDED.published_at,
			deleted_at = EXCLUDED.deleted_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		workflow.Status,
		workflow.WorkflowGroupID,
		documents.nodes,
		documents.connections,
		documents.variables,
		documents.metadata,
		workflow.Owner,
		workflow.CreatedAt,
		workflow.UpdatedAt,
		workflow.PublishedAt,
		workflow.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// Delete soft deletes a workflow by setting deleted_at timestamp.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE workflows SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

type jsonDocuments struct {
	nodes       []byte
	connections []byte
	variables   []byte
	metadata    []byte
}

func marshalDocuments(workflow *models.Workflow) (jsonDocuments, error) {
	var (
		documents jsonDocuments
		err       error
	)

	nodes := workflow.Nodes
	if nodes == nil {
		nodes = []*models.WorkflowNode{}
	}

	documents.nodes, err = json.Marshal(nodes)
	if err != nil {
		return documents, fmt.Errorf("failed to marshal nodes: %w", err)
	}

	connections := workflow.Connections
	if connections == nil {
		connections = []*models.Connection{}
	}

	documents.connections, err = json.Marshal(connections)
	if err != nil {
		return documents, fmt.Errorf("failed to marshal connections: %w", err)
	}

	documents.variables, err = json.Marshal(workflow.Variables)
	if err != nil {
		return documents, fmt.Errorf("failed to marshal variables: %w", err)
	}

	documents.metadata, err = json.Marshal(workflow.Metadata)
	if err != nil {
		return documents, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	return documents, nil
}

func (r *WorkflowRepository) scanWorkflow(scanner interface {
	Scan(dest ...any) error
}) (*models.Workflow, error) {
	var (
		workflow        models.Workflow
		groupID         sql.NullString
		owner           sql.NullString
		nodesJSON       []byte
		connectionsJSON []byte
		variablesJSON   []byte
		metadataJSON    []byte
		publishedAt     sql.NullTime
		deletedAt       sql.NullTime
	)

	err := scanner.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&workflow.Status,
		&groupID,
		&nodesJSON,
		&connectionsJSON,
		&variablesJSON,
		&metadataJSON,
		&owner,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&publishedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.WorkflowGroupID = groupID.String
	workflow.Owner = owner.String

	for _, document := range []struct {
		name string
		data []byte
		into any
	}{
		{"nodes", nodesJSON, &workflow.Nodes},
		{"connections", connectionsJSON, &workflow.Connections},
		{"variables", variablesJSON, &workflow.Variables},
		{"metadata", metadataJSON, &workflow.Metadata},
	} {
		if len(document.data) == 0 {
			continue
		}

		err = json.Unmarshal(document.data, document.into)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s of workflow %s: %w", document.name, workflow.ID, err)
		}
	}

	if publishedAt.Valid {
		workflow.PublishedAt = &publishedAt.Time
	}

	if deletedAt.Valid {
		workflow.DeletedAt = &deletedAt.Time
	}

	return &workflow, nil
}

// Package persistence provides the storage abstraction editing sessions load and save workflows through.
package persistence

import (
	"context"

	"github.com/dukex/operion-editor/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow documents. GetByID returns (nil, nil) when the
// workflow does not exist.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

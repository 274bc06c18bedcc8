package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/operion-editor/pkg/models"
	"github.com/dukex/operion-editor/pkg/persistence"
	"github.com/dukex/operion-editor/pkg/persistence/postgresql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"workflows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("operion_editor_test"),
			postgres.WithUsername("operion"),
			postgres.WithPassword("operion"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'workflows')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "workflows table should exist")

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestNewPersistence_WorkflowLifecycle(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	repo := p.WorkflowRepository()

	workflow := &models.Workflow{
		ID:          uuid.NewString(),
		Name:        "Test Workflow",
		Description: "A test workflow",
		Status:      models.WorkflowStatusDraft,
		Nodes: []*models.WorkflowNode{
			{
				ID:       "trigger1",
				Type:     models.NodeTypeTriggerScheduler,
				Category: models.CategoryTypeTrigger,
				Name:     "Daily Schedule",
				Config:   map[string]any{"cron_expression": "0 0 * * *"},
				Enabled:  true,
				Outputs:  []models.PortSpec{{Name: "success", DataType: "json"}},
			},
			{
				ID:       "step1",
				Type:     "log",
				Category: models.CategoryTypeAction,
				Name:     "Log Message",
				Config:   map[string]any{"message": "Hello World"},
				Enabled:  true,
				Inputs:   []models.PortSpec{{Name: "main", DataType: "json"}},
			},
		},
		Connections: []*models.Connection{
			{ID: "c1", SourcePort: "trigger1:success", TargetPort: "step1:main"},
		},
		Variables: map[string]any{"test_var": "test_value"},
		Metadata:  map[string]any{"created_by": "test"},
		Owner:     "test-user",
	}

	require.NoError(t, repo.Save(ctx, workflow))

	retrieved, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, workflow.Name, retrieved.Name)
	assert.Equal(t, workflow.Status, retrieved.Status)
	assert.Len(t, retrieved.Nodes, 2)
	assert.Equal(t, workflow.Connections, retrieved.Connections)
	assert.Equal(t, workflow.Nodes[1].Inputs, retrieved.Nodes[1].Inputs)
	assert.Equal(t, "test_value", retrieved.Variables["test_var"])

	workflow.Name = "Renamed Workflow"
	require.NoError(t, repo.Save(ctx, workflow))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Renamed Workflow", all[0].Name)

	require.NoError(t, repo.Delete(ctx, workflow.ID))

	deleted, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	assert.True(t, persistence.IsWorkflowNotFound(repo.Delete(ctx, workflow.ID)))
}

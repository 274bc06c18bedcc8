package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflow_Validation_ValidWorkflow(t *testing.T) {
	workflow := &Workflow{
		ID:          "wf-123",
		Name:        "User Registration Flow",
		Description: "Handles user registration with email verification",
		Status:      WorkflowStatusDraft,
		Variables:   map[string]any{"api_timeout": 30, "retry_count": 3},
		Owner:       "user-456",
		Nodes: []*WorkflowNode{
			{ID: "validate-input", Type: "conditional", Category: CategoryTypeAction, Name: "Validate Input", Enabled: true},
			{ID: "create-user", Type: "httprequest", Category: CategoryTypeAction, Name: "Create User", Enabled: true},
		},
		Connections: []*Connection{
			{ID: "conn-1", SourcePort: "validate-input:true", TargetPort: "create-user:main"},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	validate := validator.New()
	err := validate.Struct(workflow)
	assert.NoError(t, err)
}

func TestWorkflow_Validation_MissingRequiredFields(t *testing.T) {
	testCases := []struct {
		name      string
		workflow  *Workflow
		fieldName string
	}{
		{
			name:      "missing name",
			workflow:  &Workflow{ID: "wf-123", Description: "Some description", Status: WorkflowStatusDraft},
			fieldName: "Name",
		},
		{
			name:      "short name",
			workflow:  &Workflow{ID: "wf-123", Name: "Wf", Description: "Some description", Status: WorkflowStatusDraft},
			fieldName: "Name",
		},
		{
			name:      "missing description",
			workflow:  &Workflow{ID: "wf-123", Name: "Test Workflow", Status: WorkflowStatusDraft},
			fieldName: "Description",
		},
		{
			name:      "missing status",
			workflow:  &Workflow{ID: "wf-123", Name: "Test Workflow", Description: "Some description"},
			fieldName: "Status",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			validate := validator.New()
			err := validate.Struct(tc.workflow)
			assert.Error(t, err)
			assert.True(t, hasFieldError(err, tc.fieldName, requiredTag, minTag),
				"Should have validation error for required %s field", tc.fieldName)
		})
	}
}

func TestWorkflow_StatusConstants(t *testing.T) {
	testCases := []struct {
		name   string
		status WorkflowStatus
	}{
		{"draft", WorkflowStatusDraft},
		{"published", WorkflowStatusPublished},
		{"unpublished", WorkflowStatusUnpublished},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			workflow := &Workflow{
				ID:          "wf-123",
				Name:        "Test Workflow",
				Description: "Test workflow description",
				Status:      tc.status,
			}

			jsonData, err := json.Marshal(workflow)
			require.NoError(t, err)
			assert.Contains(t, string(jsonData), `"status":"`+string(tc.status)+`"`)
		})
	}
}

func TestWorkflow_IsEditable(t *testing.T) {
	deletedAt := time.Now().UTC()

	testCases := []struct {
		name     string
		workflow *Workflow
		editable bool
	}{
		{"draft", &Workflow{Status: WorkflowStatusDraft}, true},
		{"published", &Workflow{Status: WorkflowStatusPublished}, false},
		{"unpublished", &Workflow{Status: WorkflowStatusUnpublished}, false},
		{"deleted draft", &Workflow{Status: WorkflowStatusDraft, DeletedAt: &deletedAt}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.editable, tc.workflow.IsEditable())
		})
	}
}

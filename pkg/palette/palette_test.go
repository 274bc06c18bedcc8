package palette

import (
	"testing"

	"github.com/dukex/operion-editor/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPalette_ListIsSorted(t *testing.T) {
	t.Parallel()

	types := Default().List()
	require.Len(t, types, 10)

	for i := 1; i < len(types); i++ {
		assert.Less(t, types[i-1].ID, types[i].ID)
	}
}

func TestPalette_GetUnknown(t *testing.T) {
	t.Parallel()

	_, err := Default().Get("nope")
	assert.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestPalette_NewNode(t *testing.T) {
	t.Parallel()

	p := Default()

	tests := []struct {
		name            string
		typeID          string
		expectedInputs  []string
		expectedOutputs []string
		category        models.CategoryType
	}{
		{
			name:            "log",
			typeID:          "log",
			expectedInputs:  []string{"main"},
			expectedOutputs: []string{"success", "error"},
			category:        models.CategoryTypeAction,
		},
		{
			name:            "merge has dynamic inputs",
			typeID:          "merge",
			expectedInputs:  []string{"input0", "input1"},
			expectedOutputs: []string{"merged", "error"},
			category:        models.CategoryTypeAction,
		},
		{
			name:            "switch keeps fixed outputs first",
			typeID:          "switch",
			expectedInputs:  []string{"main"},
			expectedOutputs: []string{"default", "error", "case0", "case1"},
			category:        models.CategoryTypeAction,
		},
		{
			name:            "webhook trigger",
			typeID:          models.NodeTypeTriggerWebhook,
			expectedOutputs: []string{"success"},
			category:        models.CategoryTypeTrigger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			node, err := p.NewNode(tt.typeID, "", 10, 20)
			require.NoError(t, err)

			assert.NotEmpty(t, node.ID)
			assert.Equal(t, tt.typeID, node.Type)
			assert.Equal(t, tt.category, node.Category)
			assert.NotEmpty(t, node.Name)
			assert.True(t, node.Enabled)
			assert.Equal(t, 10, node.PositionX)
			assert.Equal(t, 20, node.PositionY)
			assert.NotNil(t, node.Config)
			assert.Equal(t, tt.expectedInputs, portNames(node.Inputs))
			assert.Equal(t, tt.expectedOutputs, portNames(node.Outputs))
		})
	}
}

func TestPalette_NewNodeDoesNotShareTypePorts(t *testing.T) {
	t.Parallel()

	p := Default()

	node, err := p.NewNode("log", "logger", 0, 0)
	require.NoError(t, err)

	node.Inputs[0].Name = "changed"

	nodeType, err := p.Get("log")
	require.NoError(t, err)
	assert.Equal(t, "main", nodeType.Inputs[0].Name)
}

func TestPalette_ValidateConfig(t *testing.T) {
	t.Parallel()

	p := Default()

	tests := []struct {
		name    string
		typeID  string
		config  map[string]any
		partial bool
		wantErr error
	}{
		{
			name:   "valid log config",
			typeID: "log",
			config: map[string]any{"message": "hello", "level": "info"},
		},
		{
			name:    "missing required property",
			typeID:  "log",
			config:  map[string]any{"level": "info"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "missing required property while editing",
			typeID:  "log",
			config:  map[string]any{"level": "info"},
			partial: true,
		},
		{
			name:    "enum violation while editing",
			typeID:  "log",
			config:  map[string]any{"level": "loud"},
			partial: true,
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "wrong property type",
			typeID:  "httprequest",
			config:  map[string]any{"url": "https://example.com", "timeout": "soon"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:   "valid cron",
			typeID: models.NodeTypeTriggerScheduler,
			config: map[string]any{"cron_expression": "*/5 * * * *"},
		},
		{
			name:    "invalid cron",
			typeID:  models.NodeTypeTriggerScheduler,
			config:  map[string]any{"cron_expression": "every day"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "invalid cron while editing",
			typeID:  models.NodeTypeTriggerScheduler,
			config:  map[string]any{"cron_expression": "not a cron"},
			partial: true,
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "missing cron while editing",
			typeID:  models.NodeTypeTriggerScheduler,
			config:  map[string]any{"timezone": "UTC"},
			partial: true,
		},
		{
			name:    "missing cron",
			typeID:  models.NodeTypeTriggerScheduler,
			config:  map[string]any{"timezone": "UTC"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown type",
			typeID:  "nope",
			config:  map[string]any{},
			wantErr: ErrUnknownNodeType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var err error
			if tt.partial {
				err = p.ValidatePartial(tt.typeID, tt.config)
			} else {
				err = p.ValidateConfig(tt.typeID, tt.config)
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDynamicPorts_Owns(t *testing.T) {
	t.Parallel()

	d := &DynamicPorts{Prefix: "case"}

	assert.True(t, d.Owns("case0"))
	assert.True(t, d.Owns("case12"))
	assert.False(t, d.Owns("case"))
	assert.False(t, d.Owns("casex"))
	assert.False(t, d.Owns("default"))
	assert.Equal(t, "case0", d.PortName(0))
	assert.Equal(t, "case3", d.PortName(3))
}

func portNames(ports []models.PortSpec) []string {
	if len(ports) == 0 {
		return nil
	}

	names := make([]string, len(ports))
	for i, port := range ports {
		names[i] = port.Name
	}

	return names
}

// Package palette provides the catalog of node types the designer can place on a workflow.
package palette

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dukex/operion-editor/pkg/models"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrUnknownNodeType indicates the node type is not registered in the palette.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrInvalidConfig indicates a node configuration does not match its type schema.
	ErrInvalidConfig = errors.New("invalid node configuration")
)

// DynamicPorts describes a port list whose length the designer can change.
type DynamicPorts struct {
	Prefix   string `json:"prefix"`
	DataType string `json:"data_type,omitempty"`
	Min      int    `json:"min"`
	Default  int    `json:"default"`
}

// PortName returns the name of the i-th dynamic port, counting from zero.
func (d *DynamicPorts) PortName(i int) string {
	return d.Prefix + strconv.Itoa(i)
}

// Owns reports whether name belongs to the dynamic port list.
func (d *DynamicPorts) Owns(name string) bool {
	suffix, found := strings.CutPrefix(name, d.Prefix)
	if !found || suffix == "" {
		return false
	}

	_, err := strconv.Atoi(suffix)

	return err == nil
}

// NodeType describes a kind of node in the palette.
type NodeType struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    models.CategoryType `json:"category"`
	Inputs      []models.PortSpec   `json:"inputs"`
	Outputs     []models.PortSpec   `json:"outputs"`

	DynamicInputs  *DynamicPorts `json:"dynamic_inputs,omitempty"`
	DynamicOutputs *DynamicPorts `json:"dynamic_outputs,omitempty"`

	// Schema is the JSON schema of the node configuration.
	Schema map[string]any `json:"schema"`

	// Check runs additional checks on a configuration after schema validation.
	Check func(config map[string]any) error `json:"-"`
}

// Dynamic returns the dynamic port description for the direction, if any.
func (t *NodeType) Dynamic(direction models.PortDirection) *DynamicPorts {
	if direction == models.PortDirectionInput {
		return t.DynamicInputs
	}

	return t.DynamicOutputs
}

// Palette is a registry of node types.
type Palette struct {
	mu    sync.RWMutex
	types map[string]*NodeType
}

// New creates an empty palette.
func New() *Palette {
	return &Palette{types: make(map[string]*NodeType)}
}

// Register adds or replaces a node type.
func (p *Palette) Register(nodeType *NodeType) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.types[nodeType.ID] = nodeType
}

// Get returns the node type with the given ID.
func (p *Palette) Get(typeID string) (*NodeType, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	nodeType, ok := p.types[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, typeID)
	}

	return nodeType, nil
}

// List returns all node types sorted by ID.
func (p *Palette) List() []*NodeType {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(p.types))

	types := make([]*NodeType, 0, len(ids))
	for _, id := range ids {
		types = append(types, p.types[id])
	}

	return types
}

// NewNode creates a node of the given type with a fresh ID, default ports and an empty config.
func (p *Palette) NewNode(typeID, name string, x, y int) (*models.WorkflowNode, error) {
	nodeType, err := p.Get(typeID)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = nodeType.Name
	}

	return &models.WorkflowNode{
		ID:        uuid.New().String(),
		Type:      nodeType.ID,
		Category:  nodeType.Category,
		Config:    make(map[string]any),
		PositionX: x,
		PositionY: y,
		Name:      name,
		Enabled:   true,
		Inputs:    defaultPorts(nodeType.Inputs, nodeType.DynamicInputs),
		Outputs:   defaultPorts(nodeType.Outputs, nodeType.DynamicOutputs),
	}, nil
}

// ValidateConfig validates a complete node configuration against its type schema.
func (p *Palette) ValidateConfig(typeID string, config map[string]any) error {
	return p.validate(typeID, config, false)
}

// ValidatePartial validates a configuration that is still being edited: properties present must
// match their schema and pass the type check, but required properties may be missing.
func (p *Palette) ValidatePartial(typeID string, config map[string]any) error {
	return p.validate(typeID, config, true)
}

func (p *Palette) validate(typeID string, config map[string]any, partial bool) error {
	nodeType, err := p.Get(typeID)
	if err != nil {
		return err
	}

	if config == nil {
		config = map[string]any{}
	}

	if nodeType.Schema != nil {
		schema := nodeType.Schema
		if partial {
			schema = withoutRequired(schema)
		}

		err = validateJSONSchema(config, schema)
		if err != nil {
			return err
		}
	}

	if nodeType.Check != nil {
		err = nodeType.Check(config)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	return nil
}

// validateJSONSchema validates data against a JSON schema.
func validateJSONSchema(data any, schema map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			messages = append(messages, resultErr.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(messages, "; "))
	}

	return nil
}

// withoutRequired returns a shallow copy of the schema with the top-level "required" removed.
func withoutRequired(schema map[string]any) map[string]any {
	relaxed := maps.Clone(schema)
	delete(relaxed, "required")

	return relaxed
}

func defaultPorts(fixed []models.PortSpec, dynamic *DynamicPorts) []models.PortSpec {
	ports := slices.Clone(fixed)

	if dynamic != nil {
		for i := range max(dynamic.Default, dynamic.Min) {
			ports = append(ports, models.PortSpec{
				Name:     dynamic.PortName(i),
				DataType: dynamic.DataType,
			})
		}
	}

	return ports
}

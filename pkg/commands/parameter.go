package commands

import (
	"fmt"
	"maps"

	"github.com/dukex/operion-editor/pkg/models"
	"github.com/dukex/operion-editor/pkg/palette"
)

// ChangeParameter sets one configuration value of a node. A nil value removes the key.
type ChangeParameter struct {
	workflow *models.Workflow
	palette  *palette.Palette
	nodeID   string
	key      string
	value    any

	previous    any
	hadPrevious bool
}

// NewChangeParameter creates a command setting config[key] = value on the node nodeID.
func NewChangeParameter(wf *models.Workflow, p *palette.Palette, nodeID, key string, value any) *ChangeParameter {
	return &ChangeParameter{workflow: wf, palette: p, nodeID: nodeID, key: key, value: value}
}

// Check validates the configuration the node would have after the change.
func (c *ChangeParameter) Check() error {
	if c.key == "" {
		return newEditError("change parameter", c.nodeID, ErrInvalidParameter)
	}

	node, ok := c.workflow.Node(c.nodeID)
	if !ok {
		return newEditError("change parameter", c.nodeID, ErrNodeNotFound)
	}

	candidate := maps.Clone(node.Config)
	if candidate == nil {
		candidate = make(map[string]any)
	}

	apply(candidate, c.key, c.value, c.value != nil)

	if err := c.palette.ValidatePartial(node.Type, candidate); err != nil {
		return newEditError("change parameter", c.nodeID, fmt.Errorf("%s: %w", c.key, err))
	}

	return nil
}

func (c *ChangeParameter) CanExecute() bool {
	return c.Check() == nil
}

func (c *ChangeParameter) Execute() error {
	node, ok := c.workflow.Node(c.nodeID)
	if !ok {
		return newEditError("change parameter", c.nodeID, ErrNodeNotFound)
	}

	if node.Config == nil {
		node.Config = make(map[string]any)
	}

	c.previous, c.hadPrevious = node.Config[c.key]
	apply(node.Config, c.key, c.value, c.value != nil)

	return nil
}

func (c *ChangeParameter) Undo() error {
	node, ok := c.workflow.Node(c.nodeID)
	if !ok {
		return newEditError("undo change parameter", c.nodeID, ErrNodeNotFound)
	}

	if node.Config == nil {
		node.Config = make(map[string]any)
	}

	apply(node.Config, c.key, c.previous, c.hadPrevious)

	return nil
}

func (c *ChangeParameter) Redo() error {
	return c.Execute()
}

func (c *ChangeParameter) Label() string {
	return fmt.Sprintf("change %s of node %s", c.key, c.nodeID)
}

func (c *ChangeParameter) NodeIDs() []string {
	return []string{c.nodeID}
}

func apply(config map[string]any, key string, value any, present bool) {
	if present {
		config[key] = value
	} else {
		delete(config, key)
	}
}

// Package models defines core node-based workflow models for graph editing
package models

// CategoryType represents the category of node.
type CategoryType string

const (
	CategoryTypeAction  CategoryType = "action"  // Regular action nodes (http, log, transform, etc.)
	CategoryTypeTrigger CategoryType = "trigger" // Trigger nodes (webhook, scheduler, kafka, etc.)
)

// Built-in trigger node types.
const (
	NodeTypeTriggerWebhook   = "trigger:webhook"
	NodeTypeTriggerScheduler = "trigger:scheduler"
	NodeTypeTriggerKafka     = "trigger:kafka"
)

// Connection connects two ports directly (fully normalized).
type Connection struct {
	ID         string `json:"id"          validate:"required"`
	SourcePort string `json:"source_port" validate:"required"` // References Port.ID: "{node_id}:{port_name}"
	TargetPort string `json:"target_port" validate:"required"` // References Port.ID: "{node_id}:{port_name}"
}

// WorkflowNode represents a node instance in a workflow.
type WorkflowNode struct {
	ID         string         `json:"id"                    validate:"required"`
	Type       string         `json:"type"                  validate:"required"`
	Category   CategoryType   `json:"category"              validate:"required,oneof=action trigger"`
	Config     map[string]any `json:"config"`
	PositionX  int            `json:"position_x"`
	PositionY  int            `json:"position_y"`
	Name       string         `json:"name"                  validate:"required,min=1"`
	Enabled    bool           `json:"enabled"`
	Inputs     []PortSpec     `json:"inputs,omitempty"      validate:"dive"`
	Outputs    []PortSpec     `json:"outputs,omitempty"     validate:"dive"`
	SourceID   *string        `json:"source_id,omitempty"`   // For trigger nodes only
	ProviderID *string        `json:"provider_id,omitempty"` // For trigger nodes only
	EventType  *string        `json:"event_type,omitempty"`  // For trigger nodes only
}

// Helper methods for category checking.
func (n *WorkflowNode) IsActionNode() bool {
	return n.Category == CategoryTypeAction
}

func (n *WorkflowNode) IsTriggerNode() bool {
	return n.Category == CategoryTypeTrigger
}

// Ports returns the node's ports for the given direction.
func (n *WorkflowNode) Ports(direction PortDirection) []PortSpec {
	if direction == PortDirectionInput {
		return n.Inputs
	}

	return n.Outputs
}

// SetPorts replaces the node's ports for the given direction.
func (n *WorkflowNode) SetPorts(direction PortDirection, ports []PortSpec) {
	if direction == PortDirectionInput {
		n.Inputs = ports
	} else {
		n.Outputs = ports
	}
}

// Port looks up a port by name in the given direction.
func (n *WorkflowNode) Port(direction PortDirection, name string) (PortSpec, bool) {
	for _, port := range n.Ports(direction) {
		if port.Name == name {
			return port, true
		}
	}

	return PortSpec{}, false
}

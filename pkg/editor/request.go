package editor

import (
	"fmt"

	"github.com/dukex/operion-editor/pkg/commands"
	"github.com/dukex/operion-editor/pkg/history"
	"github.com/dukex/operion-editor/pkg/models"
	"github.com/dukex/operion-editor/pkg/palette"
	"github.com/go-playground/validator/v10"
)

// CommandKind selects the edit a CommandRequest describes.
type CommandKind string

const (
	KindAddNode         CommandKind = "add_node"
	KindRemoveNode      CommandKind = "remove_node"
	KindMoveNode        CommandKind = "move_node"
	KindConnect         CommandKind = "connect"
	KindDisconnect      CommandKind = "disconnect"
	KindChangeParameter CommandKind = "change_parameter"
	KindChangePorts     CommandKind = "change_ports"
	KindChangeInfo      CommandKind = "change_info"
	KindBatch           CommandKind = "batch"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CommandRequest is the wire form of an edit. Which fields are read depends on Kind.
type CommandRequest struct {
	Kind CommandKind `json:"kind" validate:"required,oneof=add_node remove_node move_node connect disconnect change_parameter change_ports change_info batch"`

	// add_node, remove_node, move_node, change_parameter, change_ports
	NodeID string `json:"node_id,omitempty"`

	// add_node
	NodeType string         `json:"node_type,omitempty"`
	Name     string         `json:"name,omitempty"`
	Config   map[string]any `json:"config,omitempty"`

	// add_node, move_node
	X int `json:"x"`
	Y int `json:"y"`

	// connect, disconnect
	ConnectionID string `json:"connection_id,omitempty"`
	SourcePort   string `json:"source_port,omitempty"`
	TargetPort   string `json:"target_port,omitempty"`

	// change_parameter
	Key   string `json:"key,omitempty"`
	Value any    `json:"value,omitempty"`

	// change_ports
	Direction models.PortDirection `json:"direction,omitempty" validate:"omitempty,oneof=input output"`
	Count     int                  `json:"count,omitempty"`

	// change_info
	Info *models.WorkflowInfo `json:"info,omitempty" validate:"-"`

	// batch
	Label    string           `json:"label,omitempty"`
	Commands []CommandRequest `json:"commands,omitempty" validate:"dive"`
}

// commandBuilder turns requests into commands bound to one workflow.
type commandBuilder struct {
	workflow *models.Workflow
	palette  *palette.Palette
}

func (b commandBuilder) build(req CommandRequest) (history.Command, error) {
	err := validate.Struct(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	switch req.Kind {
	case KindAddNode:
		return b.addNode(req)
	case KindRemoveNode:
		if req.NodeID == "" {
			return nil, missingField(req.Kind, "node_id")
		}

		return commands.NewRemoveNode(b.workflow, req.NodeID), nil
	case KindMoveNode:
		if req.NodeID == "" {
			return nil, missingField(req.Kind, "node_id")
		}

		return commands.NewMoveNode(b.workflow, req.NodeID, req.X, req.Y), nil
	case KindConnect:
		if req.SourcePort == "" || req.TargetPort == "" {
			return nil, missingField(req.Kind, "source_port and target_port")
		}

		return commands.NewConnect(b.workflow, &models.Connection{
			ID:         req.ConnectionID,
			SourcePort: req.SourcePort,
			TargetPort: req.TargetPort,
		}), nil
	case KindDisconnect:
		if req.ConnectionID == "" {
			return nil, missingField(req.Kind, "connection_id")
		}

		return commands.NewDisconnect(b.workflow, req.ConnectionID), nil
	case KindChangeParameter:
		if req.NodeID == "" || req.Key == "" {
			return nil, missingField(req.Kind, "node_id and key")
		}

		return commands.NewChangeParameter(b.workflow, b.palette, req.NodeID, req.Key, req.Value), nil
	case KindChangePorts:
		if req.NodeID == "" || req.Direction == "" {
			return nil, missingField(req.Kind, "node_id and direction")
		}

		return commands.NewChangeDynamicPorts(b.workflow, b.palette, req.NodeID, req.Direction, req.Count), nil
	case KindChangeInfo:
		if req.Info == nil {
			return nil, missingField(req.Kind, "info")
		}

		return commands.NewChangeWorkflowInfo(b.workflow, *req.Info), nil
	case KindBatch:
		return b.batch(req)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidCommand, req.Kind)
	}
}

func (b commandBuilder) addNode(req CommandRequest) (history.Command, error) {
	if req.NodeType == "" {
		return nil, missingField(req.Kind, "node_type")
	}

	node, err := b.palette.NewNode(req.NodeType, req.Name, req.X, req.Y)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	// a client-chosen ID lets later commands of the same batch reference the node
	if req.NodeID != "" {
		node.ID = req.NodeID
	}

	for key, value := range req.Config {
		node.Config[key] = value
	}

	return commands.NewAddNode(b.workflow, b.palette, node), nil
}

func (b commandBuilder) batch(req CommandRequest) (history.Command, error) {
	if len(req.Commands) == 0 {
		return nil, missingField(req.Kind, "commands")
	}

	children := make([]history.Command, 0, len(req.Commands))

	for i, child := range req.Commands {
		cmd, err := b.build(child)
		if err != nil {
			return nil, fmt.Errorf("batch command %d: %w", i, err)
		}

		children = append(children, cmd)
	}

	label := req.Label
	if label == "" {
		label = "batch edit"
	}

	return history.NewGroup(label, children...), nil
}

func missingField(kind CommandKind, field string) error {
	return fmt.Errorf("%w: %s requires %s", ErrInvalidCommand, kind, field)
}

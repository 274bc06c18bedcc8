package commands

import (
	"fmt"

	"github.com/dukex/operion-editor/pkg/models"
	"github.com/dukex/operion-editor/pkg/palette"
)

// AddNode places a new node on the workflow.
type AddNode struct {
	workflow *models.Workflow
	palette  *palette.Palette
	node     *models.WorkflowNode
}

// NewAddNode creates a command adding node to wf. The node config is checked against
// the node type in p.
func NewAddNode(wf *models.Workflow, p *palette.Palette, node *models.WorkflowNode) *AddNode {
	return &AddNode{workflow: wf, palette: p, node: node}
}

func (c *AddNode) Check() error {
	if c.node == nil {
		return newEditError("add", "", ErrInvalidNode)
	}

	if err := validate.Struct(c.node); err != nil {
		return newEditError("add", c.node.ID, fmt.Errorf("%w: %w", ErrInvalidNode, err))
	}

	if err := c.palette.ValidatePartial(c.node.Type, c.node.Config); err != nil {
		return newEditError("add", c.node.ID, fmt.Errorf("%w: %w", ErrInvalidNode, err))
	}

	if c.workflow.NodeIndex(c.node.ID) >= 0 {
		return newEditError("add", c.node.ID, ErrNodeExists)
	}

	return nil
}

func (c *AddNode) CanExecute() bool {
	return c.Check() == nil
}

func (c *AddNode) Execute() error {
	if c.workflow.NodeIndex(c.node.ID) >= 0 {
		return newEditError("add", c.node.ID, ErrNodeExists)
	}

	c.workflow.Nodes = append(c.workflow.Nodes, c.node)

	return nil
}

func (c *AddNode) Undo() error {
	i := c.workflow.NodeIndex(c.node.ID)
	if i < 0 {
		return newEditError("undo add", c.node.ID, ErrNodeNotFound)
	}

	c.workflow.RemoveNodeAt(i)

	return nil
}

func (c *AddNode) Redo() error {
	return c.Execute()
}

func (c *AddNode) Label() string {
	if c.node == nil {
		return "add node"
	}

	return "add node " + c.node.ID
}

func (c *AddNode) NodeIDs() []string {
	if c.node == nil {
		return nil
	}

	return []string{c.node.ID}
}

type indexedConnection struct {
	index      int
	connection *models.Connection
}

// removeConnections detaches the connections at the given ascending indexes and returns
// them with their original positions.
func removeConnections(wf *models.Workflow, indexes []int) []indexedConnection {
	removed := make([]indexedConnection, len(indexes))

	for k := len(indexes) - 1; k >= 0; k-- {
		removed[k] = indexedConnection{index: indexes[k], connection: wf.RemoveConnectionAt(indexes[k])}
	}

	return removed
}

// restoreConnections puts back connections returned by removeConnections.
func restoreConnections(wf *models.Workflow, removed []indexedConnection) {
	for _, rc := range removed {
		wf.InsertConnection(rc.index, rc.connection)
	}
}

// RemoveNode deletes a node together with every wire touching it.
type RemoveNode struct {
	workflow *models.Workflow
	nodeID   string

	node        *models.WorkflowNode
	index       int
	connections []indexedConnection
}

// NewRemoveNode creates a command removing the node nodeID from wf.
func NewRemoveNode(wf *models.Workflow, nodeID string) *RemoveNode {
	return &RemoveNode{workflow: wf, nodeID: nodeID}
}

func (c *RemoveNode) Check() error {
	if c.workflow.NodeIndex(c.nodeID) < 0 {
		return newEditError("remove", c.nodeID, ErrNodeNotFound)
	}

	return nil
}

func (c *RemoveNode) CanExecute() bool {
	return c.Check() == nil
}

func (c *RemoveNode) Execute() error {
	i := c.workflow.NodeIndex(c.nodeID)
	if i < 0 {
		return newEditError("remove", c.nodeID, ErrNodeNotFound)
	}

	c.connections = removeConnections(c.workflow, c.workflow.ConnectionsOfNode(c.nodeID))
	c.index = i
	c.node = c.workflow.RemoveNodeAt(i)

	return nil
}

func (c *RemoveNode) Undo() error {
	if c.node == nil {
		return newEditError("undo remove", c.nodeID, ErrNodeNotFound)
	}

	if c.workflow.NodeIndex(c.nodeID) >= 0 {
		return newEditError("undo remove", c.nodeID, ErrNodeExists)
	}

	c.workflow.InsertNode(c.index, c.node)
	restoreConnections(c.workflow, c.connections)

	return nil
}

func (c *RemoveNode) Redo() error {
	return c.Execute()
}

func (c *RemoveNode) Label() string {
	return "remove node " + c.nodeID
}

func (c *RemoveNode) NodeIDs() []string {
	return []string{c.nodeID}
}

// MoveNode changes the canvas position of a node.
type MoveNode struct {
	workflow *models.Workflow
	nodeID   string
	x, y     int

	previousX, previousY int
}

// NewMoveNode creates a command moving the node nodeID to (x, y).
func NewMoveNode(wf *models.Workflow, nodeID string, x, y int) *MoveNode {
	return &MoveNode{workflow: wf, nodeID: nodeID, x: x, y: y}
}

func (c *MoveNode) Check() error {
	if _, ok := c.workflow.Node(c.nodeID); !ok {
		return newEditError("move", c.nodeID, ErrNodeNotFound)
	}

	return nil
}

func (c *MoveNode) CanExecute() bool {
	return c.Check() == nil
}

func (c *MoveNode) Execute() error {
	node, ok := c.workflow.Node(c.nodeID)
	if !ok {
		return newEditError("move", c.nodeID, ErrNodeNotFound)
	}

	c.previousX, c.previousY = node.PositionX, node.PositionY
	node.PositionX, node.PositionY = c.x, c.y

	return nil
}

func (c *MoveNode) Undo() error {
	node, ok := c.workflow.Node(c.nodeID)
	if !ok {
		return newEditError("undo move", c.nodeID, ErrNodeNotFound)
	}

	node.PositionX, node.PositionY = c.previousX, c.previousY

	return nil
}

func (c *MoveNode) Redo() error {
	return c.Execute()
}

func (c *MoveNode) Label() string {
	return "move node " + c.nodeID
}

func (c *MoveNode) NodeIDs() []string {
	return []string{c.nodeID}
}

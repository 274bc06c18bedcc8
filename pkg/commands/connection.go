package commands

import (
	"fmt"

	"github.com/dukex/operion-editor/pkg/models"
	"github.com/google/uuid"
)

// Connect wires an output port to an input port.
type Connect struct {
	workflow   *models.Workflow
	connection *models.Connection
}

// NewConnect creates a command adding conn to wf. A connection without ID gets a fresh one.
func NewConnect(wf *models.Workflow, conn *models.Connection) *Connect {
	if conn != nil && conn.ID == "" {
		conn.ID = uuid.New().String()
	}

	return &Connect{workflow: wf, connection: conn}
}

// Check verifies the wire against the current graph.
func (c *Connect) Check() error {
	if c.connection == nil {
		return newEditError("connect", "", ErrConnectionNotFound)
	}

	sourceNodeID, sourcePortName, ok := models.ParsePortID(c.connection.SourcePort)
	if !ok {
		return newEditError("connect", "", fmt.Errorf("%w: %s", ErrPortNotFound, c.connection.SourcePort))
	}

	targetNodeID, targetPortName, ok := models.ParsePortID(c.connection.TargetPort)
	if !ok {
		return newEditError("connect", "", fmt.Errorf("%w: %s", ErrPortNotFound, c.connection.TargetPort))
	}

	sourceNode, ok := c.workflow.Node(sourceNodeID)
	if !ok {
		return newEditError("connect", sourceNodeID, ErrNodeNotFound)
	}

	targetNode, ok := c.workflow.Node(targetNodeID)
	if !ok {
		return newEditError("connect", targetNodeID, ErrNodeNotFound)
	}

	if sourceNodeID == targetNodeID {
		return newEditError("connect", sourceNodeID, ErrSelfConnection)
	}

	sourcePort, ok := sourceNode.Port(models.PortDirectionOutput, sourcePortName)
	if !ok {
		return newEditError("connect", sourceNodeID, fmt.Errorf("%w: output %s", ErrPortNotFound, sourcePortName))
	}

	targetPort, ok := targetNode.Port(models.PortDirectionInput, targetPortName)
	if !ok {
		return newEditError("connect", targetNodeID, fmt.Errorf("%w: input %s", ErrPortNotFound, targetPortName))
	}

	if !targetPort.Accepts(sourcePort) {
		return newEditError("connect", targetNodeID, fmt.Errorf("%w: %s does not accept %s",
			ErrIncompatiblePorts, targetPort.DataType, sourcePort.DataType))
	}

	if c.workflow.ConnectionIndex(c.connection.ID) >= 0 ||
		c.workflow.HasConnection(c.connection.SourcePort, c.connection.TargetPort) {
		return newEditError("connect", targetNodeID, ErrDuplicateConnection)
	}

	if !targetPort.Multiple && len(c.workflow.ConnectionsOfPort(c.connection.TargetPort, models.PortDirectionInput)) > 0 {
		return newEditError("connect", targetNodeID, fmt.Errorf("%w: %s", ErrPortOccupied, targetPortName))
	}

	return nil
}

func (c *Connect) CanExecute() bool {
	return c.Check() == nil
}

func (c *Connect) Execute() error {
	if err := c.Check(); err != nil {
		return err
	}

	c.workflow.Connections = append(c.workflow.Connections, c.connection)

	return nil
}

func (c *Connect) Undo() error {
	i := c.workflow.ConnectionIndex(c.connection.ID)
	if i < 0 {
		return newEditError("undo connect", "", fmt.Errorf("%w: %s", ErrConnectionNotFound, c.connection.ID))
	}

	c.workflow.RemoveConnectionAt(i)

	return nil
}

func (c *Connect) Redo() error {
	return c.Execute()
}

func (c *Connect) Label() string {
	if c.connection == nil {
		return "connect"
	}

	return fmt.Sprintf("connect %s to %s", c.connection.SourcePort, c.connection.TargetPort)
}

func (c *Connect) NodeIDs() []string {
	if c.connection == nil {
		return nil
	}

	return connectionNodeIDs(c.connection)
}

// Disconnect removes a wire.
type Disconnect struct {
	workflow     *models.Workflow
	connectionID string

	removed indexedConnection
}

// NewDisconnect creates a command removing the connection connectionID from wf.
func NewDisconnect(wf *models.Workflow, connectionID string) *Disconnect {
	return &Disconnect{workflow: wf, connectionID: connectionID}
}

func (c *Disconnect) Check() error {
	if c.workflow.ConnectionIndex(c.connectionID) < 0 {
		return newEditError("disconnect", "", fmt.Errorf("%w: %s", ErrConnectionNotFound, c.connectionID))
	}

	return nil
}

func (c *Disconnect) CanExecute() bool {
	return c.Check() == nil
}

func (c *Disconnect) Execute() error {
	i := c.workflow.ConnectionIndex(c.connectionID)
	if i < 0 {
		return newEditError("disconnect", "", fmt.Errorf("%w: %s", ErrConnectionNotFound, c.connectionID))
	}

	c.removed = indexedConnection{index: i, connection: c.workflow.RemoveConnectionAt(i)}

	return nil
}

func (c *Disconnect) Undo() error {
	if c.removed.connection == nil {
		return newEditError("undo disconnect", "", fmt.Errorf("%w: %s", ErrConnectionNotFound, c.connectionID))
	}

	restoreConnections(c.workflow, []indexedConnection{c.removed})

	return nil
}

func (c *Disconnect) Redo() error {
	return c.Execute()
}

func (c *Disconnect) Label() string {
	return "disconnect " + c.connectionID
}

func (c *Disconnect) NodeIDs() []string {
	if c.removed.connection != nil {
		return connectionNodeIDs(c.removed.connection)
	}

	if conn, ok := c.workflow.Connection(c.connectionID); ok {
		return connectionNodeIDs(conn)
	}

	return nil
}

func connectionNodeIDs(conn *models.Connection) []string {
	sourceNodeID, _, _ := models.ParsePortID(conn.SourcePort)
	targetNodeID, _, _ := models.ParsePortID(conn.TargetPort)

	return []string{sourceNodeID, targetNodeID}
}

package commands

import (
	"fmt"
	"slices"

	"github.com/dukex/operion-editor/pkg/models"
	"github.com/dukex/operion-editor/pkg/palette"
)

// ChangeDynamicPorts resizes the dynamic port list of a node, such as the cases of a
// switch or the inputs of a merge. Wires on ports that disappear are removed with them.
type ChangeDynamicPorts struct {
	workflow  *models.Workflow
	palette   *palette.Palette
	nodeID    string
	direction models.PortDirection
	count     int

	previous    []models.PortSpec
	connections []indexedConnection
}

// NewChangeDynamicPorts creates a command giving the node nodeID count dynamic ports in direction.
func NewChangeDynamicPorts(
	wf *models.Workflow,
	p *palette.Palette,
	nodeID string,
	direction models.PortDirection,
	count int,
) *ChangeDynamicPorts {
	return &ChangeDynamicPorts{workflow: wf, palette: p, nodeID: nodeID, direction: direction, count: count}
}

func (c *ChangeDynamicPorts) dynamic() (*models.WorkflowNode, *palette.DynamicPorts, error) {
	node, ok := c.workflow.Node(c.nodeID)
	if !ok {
		return nil, nil, newEditError("change ports", c.nodeID, ErrNodeNotFound)
	}

	nodeType, err := c.palette.Get(node.Type)
	if err != nil {
		return nil, nil, newEditError("change ports", c.nodeID, err)
	}

	dynamic := nodeType.Dynamic(c.direction)
	if dynamic == nil {
		return nil, nil, newEditError("change ports", c.nodeID, fmt.Errorf("%w: %s %s", ErrNotDynamic, node.Type, c.direction))
	}

	return node, dynamic, nil
}

func (c *ChangeDynamicPorts) Check() error {
	_, dynamic, err := c.dynamic()
	if err != nil {
		return err
	}

	if c.count < max(1, dynamic.Min) {
		return newEditError("change ports", c.nodeID,
			fmt.Errorf("%w: %d, minimum is %d", ErrInvalidPortCount, c.count, max(1, dynamic.Min)))
	}

	return nil
}

func (c *ChangeDynamicPorts) CanExecute() bool {
	return c.Check() == nil
}

func (c *ChangeDynamicPorts) Execute() error {
	if err := c.Check(); err != nil {
		return err
	}

	node, dynamic, _ := c.dynamic()
	current := node.Ports(c.direction)

	existing := make(map[string]models.PortSpec)
	ports := make([]models.PortSpec, 0, len(current)+c.count)

	for _, port := range current {
		if dynamic.Owns(port.Name) {
			existing[port.Name] = port
		} else {
			ports = append(ports, port)
		}
	}

	for i := range c.count {
		name := dynamic.PortName(i)
		if port, ok := existing[name]; ok {
			ports = append(ports, port)
		} else {
			ports = append(ports, models.PortSpec{Name: name, DataType: dynamic.DataType})
		}
	}

	var dropped []int

	for i, conn := range c.workflow.Connections {
		end := conn.TargetPort
		if c.direction == models.PortDirectionOutput {
			end = conn.SourcePort
		}

		nodeID, portName, _ := models.ParsePortID(end)
		if nodeID != c.nodeID {
			continue
		}

		if !slices.ContainsFunc(ports, func(p models.PortSpec) bool { return p.Name == portName }) {
			dropped = append(dropped, i)
		}
	}

	c.previous = slices.Clone(current)
	c.connections = removeConnections(c.workflow, dropped)
	node.SetPorts(c.direction, ports)

	return nil
}

func (c *ChangeDynamicPorts) Undo() error {
	node, ok := c.workflow.Node(c.nodeID)
	if !ok {
		return newEditError("undo change ports", c.nodeID, ErrNodeNotFound)
	}

	node.SetPorts(c.direction, c.previous)
	restoreConnections(c.workflow, c.connections)

	return nil
}

func (c *ChangeDynamicPorts) Redo() error {
	return c.Execute()
}

func (c *ChangeDynamicPorts) Label() string {
	return fmt.Sprintf("set %d %s ports on node %s", c.count, c.direction, c.nodeID)
}

func (c *ChangeDynamicPorts) NodeIDs() []string {
	return []string{c.nodeID}
}

package models

// NodeIndex returns the position of the node with the given ID, or -1.
func (w *Workflow) NodeIndex(nodeID string) int {
	for i, node := range w.Nodes {
		if node.ID == nodeID {
			return i
		}
	}

	return -1
}

// Node returns the node with the given ID.
func (w *Workflow) Node(nodeID string) (*WorkflowNode, bool) {
	if i := w.NodeIndex(nodeID); i >= 0 {
		return w.Nodes[i], true
	}

	return nil, false
}

// InsertNode inserts node at index i, clamping i to the valid range.
func (w *Workflow) InsertNode(i int, node *WorkflowNode) {
	i = clamp(i, len(w.Nodes))

	w.Nodes = append(w.Nodes, nil)
	copy(w.Nodes[i+1:], w.Nodes[i:])
	w.Nodes[i] = node
}

// RemoveNodeAt removes and returns the node at index i.
func (w *Workflow) RemoveNodeAt(i int) *WorkflowNode {
	node := w.Nodes[i]

	copy(w.Nodes[i:], w.Nodes[i+1:])
	w.Nodes[len(w.Nodes)-1] = nil
	w.Nodes = w.Nodes[:len(w.Nodes)-1]

	return node
}

// ConnectionIndex returns the position of the connection with the given ID, or -1.
func (w *Workflow) ConnectionIndex(connectionID string) int {
	for i, conn := range w.Connections {
		if conn.ID == connectionID {
			return i
		}
	}

	return -1
}

// Connection returns the connection with the given ID.
func (w *Workflow) Connection(connectionID string) (*Connection, bool) {
	if i := w.ConnectionIndex(connectionID); i >= 0 {
		return w.Connections[i], true
	}

	return nil, false
}

// InsertConnection inserts conn at index i, clamping i to the valid range.
func (w *Workflow) InsertConnection(i int, conn *Connection) {
	i = clamp(i, len(w.Connections))

	w.Connections = append(w.Connections, nil)
	copy(w.Connections[i+1:], w.Connections[i:])
	w.Connections[i] = conn
}

// RemoveConnectionAt removes and returns the connection at index i.
func (w *Workflow) RemoveConnectionAt(i int) *Connection {
	conn := w.Connections[i]

	copy(w.Connections[i:], w.Connections[i+1:])
	w.Connections[len(w.Connections)-1] = nil
	w.Connections = w.Connections[:len(w.Connections)-1]

	return conn
}

// ConnectionsOfNode returns the indexes of connections with either end on the node, ascending.
func (w *Workflow) ConnectionsOfNode(nodeID string) []int {
	var indexes []int

	for i, conn := range w.Connections {
		sourceNode, _, _ := ParsePortID(conn.SourcePort)
		targetNode, _, _ := ParsePortID(conn.TargetPort)

		if sourceNode == nodeID || targetNode == nodeID {
			indexes = append(indexes, i)
		}
	}

	return indexes
}

// ConnectionsOfPort returns the indexes of connections ending on the given port, ascending.
func (w *Workflow) ConnectionsOfPort(portID string, direction PortDirection) []int {
	var indexes []int

	for i, conn := range w.Connections {
		end := conn.TargetPort
		if direction == PortDirectionOutput {
			end = conn.SourcePort
		}

		if end == portID {
			indexes = append(indexes, i)
		}
	}

	return indexes
}

// HasConnection reports whether a wire between the two ports already exists.
func (w *Workflow) HasConnection(sourcePort, targetPort string) bool {
	for _, conn := range w.Connections {
		if conn.SourcePort == sourcePort && conn.TargetPort == targetPort {
			return true
		}
	}

	return false
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}

	if i > n {
		return n
	}

	return i
}

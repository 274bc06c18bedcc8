// Package models defines port-based workflow models for node connections.
package models

// DataTypeAny accepts values of every data type.
const DataTypeAny = "any"

// PortSpec declares a port on a node.
type PortSpec struct {
	Name     string `json:"name"                validate:"required"`
	DataType string `json:"data_type,omitempty"`
	// Multiple allows more than one wire on an input port.
	Multiple bool `json:"multiple,omitempty"`
}

// Accepts reports whether a wire carrying other's data type may end on p.
func (p PortSpec) Accepts(other PortSpec) bool {
	if p.DataType == "" || p.DataType == DataTypeAny {
		return true
	}

	if other.DataType == "" || other.DataType == DataTypeAny {
		return true
	}

	return p.DataType == other.DataType
}

// PortDirection represents the direction of data flow for a port.
type PortDirection string

const (
	PortDirectionInput  PortDirection = "input"
	PortDirectionOutput PortDirection = "output"
)

// ParsePortID parses a port ID in format "{node_id}:{port_name}" into components.
func ParsePortID(portID string) (string, string, bool) {
	for i := range len(portID) {
		if portID[i] == ':' {
			return portID[:i], portID[i+1:], true
		}
	}

	return "", "", false
}

// MakePortID creates a port ID from node ID and port name.
func MakePortID(nodeID, portName string) string {
	return nodeID + ":" + portName
}

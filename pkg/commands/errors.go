// Package commands provides the reversible workflow edits applied through a history.CommandStack.
package commands

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNodeNotFound indicates the node referenced by an edit is not in the workflow.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeExists indicates a node with the same ID is already in the workflow.
	ErrNodeExists = errors.New("node already exists")

	// ErrInvalidNode indicates a node failed struct validation.
	ErrInvalidNode = errors.New("invalid node")

	// ErrConnectionNotFound indicates the connection referenced by an edit is not in the workflow.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrPortNotFound indicates a port ID does not resolve to a port of the right direction.
	ErrPortNotFound = errors.New("port not found")

	// ErrIncompatiblePorts indicates the source data type cannot flow into the target port.
	ErrIncompatiblePorts = errors.New("incompatible ports")

	// ErrSelfConnection indicates a wire would connect a node to itself.
	ErrSelfConnection = errors.New("cannot connect a node to itself")

	// ErrDuplicateConnection indicates an identical wire already exists.
	ErrDuplicateConnection = errors.New("connection already exists")

	// ErrPortOccupied indicates a single-wire input port already has a wire.
	ErrPortOccupied = errors.New("input port already connected")

	// ErrNotDynamic indicates the node type has no resizable port list in that direction.
	ErrNotDynamic = errors.New("ports are not dynamic")

	// ErrInvalidPortCount indicates a dynamic port count below the type minimum.
	ErrInvalidPortCount = errors.New("invalid port count")

	// ErrInvalidParameter indicates an empty parameter key.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidInfo indicates workflow info failed struct validation.
	ErrInvalidInfo = errors.New("invalid workflow info")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// EditError wraps an edit failure with the operation and node it concerns.
type EditError struct {
	Op     string // Operation name, e.g. "connect"
	NodeID string // Node ID if applicable
	Err    error  // Underlying error
}

func (e *EditError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s node %s: %v", e.Op, e.NodeID, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EditError) Unwrap() error {
	return e.Err
}

func (e *EditError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newEditError(op, nodeID string, err error) *EditError {
	return &EditError{Op: op, NodeID: nodeID, Err: err}
}

// IsNotFound reports whether err means an edit referenced something missing from the workflow.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrConnectionNotFound) ||
		errors.Is(err, ErrPortNotFound)
}

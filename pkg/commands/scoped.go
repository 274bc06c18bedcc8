package commands

import (
	"slices"

	"github.com/dukex/operion-editor/pkg/history"
)

// Checker is implemented by commands that can explain why CanExecute is false.
type Checker interface {
	Check() error
}

// NodeScoped is implemented by commands that edit specific nodes.
type NodeScoped interface {
	NodeIDs() []string
}

// ReferencesNode reports whether cmd, or any command grouped inside it, edits the node.
func ReferencesNode(cmd history.Command, nodeID string) bool {
	switch c := cmd.(type) {
	case *history.Group:
		return slices.ContainsFunc(c.Commands, func(child history.Command) bool {
			return ReferencesNode(child, nodeID)
		})
	case NodeScoped:
		return slices.Contains(c.NodeIDs(), nodeID)
	default:
		return false
	}
}

// Explain returns the reason cmd cannot execute, or nil when it can or gives no reason.
func Explain(cmd history.Command) error {
	// grouped commands are checked one at a time as the group runs
	if group, ok := cmd.(*history.Group); ok {
		if len(group.Commands) == 0 {
			return history.ErrEmptyGroup
		}

		return nil
	}

	if checker, ok := cmd.(Checker); ok {
		return checker.Check()
	}

	return nil
}

// Package web provides HTTP request and response types for the editor API.
package web

import (
	"github.com/dukex/operion-editor/pkg/editor"
	"github.com/dukex/operion-editor/pkg/palette"
)

// OpenSessionRequest opens a session on an existing workflow, or on a new draft when
// WorkflowID is empty.
type OpenSessionRequest struct {
	WorkflowID  string         `json:"workflow_id,omitempty"`
	Name        string         `json:"name,omitempty"        validate:"required_without=WorkflowID,omitempty,min=3"`
	Description string         `json:"description,omitempty" validate:"required_without=WorkflowID"`
	Owner       string         `json:"owner"`
	Variables   map[string]any `json:"variables,omitempty"`
}

// UndoLimitRequest sets the undo capacity of a session.
type UndoLimitRequest struct {
	Limit int `json:"limit" validate:"required,min=1,max=1000"`
}

// PaletteResponse lists the node types that can be placed.
type PaletteResponse struct {
	NodeTypes []*palette.NodeType `json:"node_types"`
}

// ApplyResponse reports the outcome of a command, undo or redo with the resulting session state.
type ApplyResponse struct {
	Applied bool          `json:"applied"`
	Label   string        `json:"label,omitempty"`
	Reason  string        `json:"reason,omitempty"`
	State   *editor.State `json:"state"`
}

// ForgetNodeResponse reports how many commands were removed from a session history.
type ForgetNodeResponse struct {
	Removed int            `json:"removed"`
	History editor.History `json:"history"`
}

func newApplyResponse(result editor.ApplyResult, state editor.State) ApplyResponse {
	response := ApplyResponse{
		Applied: result.Applied,
		Label:   result.Label,
		State:   &state,
	}

	if result.Reason != nil {
		response.Reason = result.Reason.Error()
	}

	return response
}

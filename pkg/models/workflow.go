// Package models defines the workflow document edited by the designer.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft       WorkflowStatus = "draft"       // Editable, not executable
	WorkflowStatusPublished   WorkflowStatus = "published"   // Current active, executable
	WorkflowStatusUnpublished WorkflowStatus = "unpublished" // Historical, not executable
)

// Workflow represents a node-based workflow.
type Workflow struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"                   validate:"required,min=3"`
	Description     string          `json:"description"            validate:"required"`
	Status          WorkflowStatus  `json:"status"                 validate:"required"`
	WorkflowGroupID string          `json:"workflow_group_id"` // Stable ID linking all versions
	Nodes           []*WorkflowNode `json:"nodes"`             // Node instances in the workflow
	Connections     []*Connection   `json:"connections"`       // Connections between nodes
	Variables       map[string]any  `json:"variables"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
	Owner           string          `json:"owner"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	PublishedAt     *time.Time      `json:"published_at,omitempty"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty"`
}

// WorkflowInfo holds the descriptive fields of a workflow that the designer edits
// independently from its graph.
type WorkflowInfo struct {
	Name        string         `json:"name"                validate:"required,min=3"`
	Description string         `json:"description"         validate:"required"`
	Variables   map[string]any `json:"variables"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Info returns the descriptive fields of the workflow.
func (w *Workflow) Info() WorkflowInfo {
	return WorkflowInfo{
		Name:        w.Name,
		Description: w.Description,
		Variables:   w.Variables,
		Metadata:    w.Metadata,
	}
}

// SetInfo replaces the descriptive fields of the workflow.
func (w *Workflow) SetInfo(info WorkflowInfo) {
	w.Name = info.Name
	w.Description = info.Description
	w.Variables = info.Variables
	w.Metadata = info.Metadata
}

// IsEditable reports whether the workflow may be changed by the designer.
func (w *Workflow) IsEditable() bool {
	return w.Status == WorkflowStatusDraft && w.DeletedAt == nil
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() (*Workflow, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow %s: %w", w.ID, err)
	}

	var clone Workflow

	err = json.Unmarshal(data, &clone)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", w.ID, err)
	}

	return &clone, nil
}

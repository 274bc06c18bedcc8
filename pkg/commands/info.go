package commands

import (
	"fmt"

	"github.com/dukex/operion-editor/pkg/models"
)

// ChangeWorkflowInfo replaces the name, description, variables and metadata of a workflow.
type ChangeWorkflowInfo struct {
	workflow *models.Workflow
	info     models.WorkflowInfo

	previous models.WorkflowInfo
}

// NewChangeWorkflowInfo creates a command setting the workflow info.
func NewChangeWorkflowInfo(wf *models.Workflow, info models.WorkflowInfo) *ChangeWorkflowInfo {
	return &ChangeWorkflowInfo{workflow: wf, info: info}
}

func (c *ChangeWorkflowInfo) Check() error {
	if err := validate.Struct(c.info); err != nil {
		return newEditError("change info", "", fmt.Errorf("%w: %w", ErrInvalidInfo, err))
	}

	return nil
}

func (c *ChangeWorkflowInfo) CanExecute() bool {
	return c.Check() == nil
}

func (c *ChangeWorkflowInfo) Execute() error {
	c.previous = c.workflow.Info()
	c.workflow.SetInfo(c.info)

	return nil
}

func (c *ChangeWorkflowInfo) Undo() error {
	c.workflow.SetInfo(c.previous)

	return nil
}

func (c *ChangeWorkflowInfo) Redo() error {
	return c.Execute()
}

func (c *ChangeWorkflowInfo) Label() string {
	return "change workflow info"
}

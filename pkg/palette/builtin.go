package palette

import (
	"fmt"

	"github.com/dukex/operion-editor/pkg/models"
	"github.com/robfig/cron/v3"
)

const (
	portMain    = "main"
	portSuccess = "success"
	portError   = "error"

	dataTypeJSON = "json"
)

// Default returns a palette with the built-in Operion node types.
func Default() *Palette {
	p := New()

	p.Register(logNodeType())
	p.Register(transformNodeType())
	p.Register(httpRequestNodeType())
	p.Register(conditionalNodeType())
	p.Register(switchNodeType())
	p.Register(mergeNodeType())
	p.Register(forkNodeType())
	p.Register(webhookTriggerNodeType())
	p.Register(schedulerTriggerNodeType())
	p.Register(kafkaTriggerNodeType())

	return p
}

func mainInput() []models.PortSpec {
	return []models.PortSpec{{Name: portMain, DataType: dataTypeJSON}}
}

func successAndError() []models.PortSpec {
	return []models.PortSpec{
		{Name: portSuccess, DataType: dataTypeJSON},
		{Name: portError, DataType: dataTypeJSON},
	}
}

func logNodeType() *NodeType {
	return &NodeType{
		ID:          "log",
		Name:        "Log",
		Description: "Writes a message to the workflow execution log",
		Category:    models.CategoryTypeAction,
		Inputs:      mainInput(),
		Outputs:     successAndError(),
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{
					"type":        "string",
					"description": "Message to log, supports templating",
				},
				"level": map[string]any{
					"type":        "string",
					"description": "Log level",
					"enum":        []string{"debug", "info", "warn", "error"},
					"default":     "info",
				},
			},
			"required": []string{"message"},
		},
	}
}

func transformNodeType() *NodeType {
	return &NodeType{
		ID:          "transform",
		Name:        "Transform",
		Description: "Transforms input data using a template expression",
		Category:    models.CategoryTypeAction,
		Inputs:      mainInput(),
		Outputs:     successAndError(),
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{
					"type":        "string",
					"description": "Template expression producing the output data",
				},
			},
			"required": []string{"expression"},
		},
	}
}

func httpRequestNodeType() *NodeType {
	return &NodeType{
		ID:          "httprequest",
		Name:        "HTTP Request",
		Description: "Performs an HTTP request and outputs the response",
		Category:    models.CategoryTypeAction,
		Inputs:      mainInput(),
		Outputs:     successAndError(),
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "Request URL",
				},
				"method": map[string]any{
					"type":    "string",
					"enum":    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
					"default": "GET",
				},
				"headers": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"type": "string"},
				},
				"body": map[string]any{
					"type": "string",
				},
				"timeout": map[string]any{
					"type":    "number",
					"minimum": 0,
				},
				"retries": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"attempts": map[string]any{"type": "number", "minimum": 0},
						"delay":    map[string]any{"type": "number", "minimum": 0},
					},
				},
			},
			"required": []string{"url"},
		},
	}
}

func conditionalNodeType() *NodeType {
	return &NodeType{
		ID:          "conditional",
		Name:        "Conditional",
		Description: "Routes execution to the true or false output based on a condition",
		Category:    models.CategoryTypeAction,
		Inputs:      mainInput(),
		Outputs: []models.PortSpec{
			{Name: "true", DataType: dataTypeJSON},
			{Name: "false", DataType: dataTypeJSON},
			{Name: portError, DataType: dataTypeJSON},
		},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"condition": map[string]any{
					"type":        "string",
					"description": "Template expression evaluated as a boolean",
				},
			},
			"required": []string{"condition"},
		},
	}
}

func switchNodeType() *NodeType {
	return &NodeType{
		ID:          "switch",
		Name:        "Switch",
		Description: "Routes execution to one of several outputs based on a value",
		Category:    models.CategoryTypeAction,
		Inputs:      mainInput(),
		Outputs: []models.PortSpec{
			{Name: "default", DataType: dataTypeJSON},
			{Name: portError, DataType: dataTypeJSON},
		},
		DynamicOutputs: &DynamicPorts{Prefix: "case", DataType: dataTypeJSON, Min: 1, Default: 2},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"value": map[string]any{
					"type":        "string",
					"description": "Template expression whose result selects the case",
				},
				"cases": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"value":       map[string]any{"type": "string"},
							"output_port": map[string]any{"type": "string"},
						},
						"required": []string{"value", "output_port"},
					},
				},
			},
			"required": []string{"value"},
		},
	}
}

func mergeNodeType() *NodeType {
	return &NodeType{
		ID:          "merge",
		Name:        "Merge",
		Description: "Merges multiple execution paths into a single output",
		Category:    models.CategoryTypeAction,
		Outputs: []models.PortSpec{
			{Name: "merged", DataType: dataTypeJSON},
			{Name: portError, DataType: dataTypeJSON},
		},
		DynamicInputs: &DynamicPorts{Prefix: "input", DataType: dataTypeJSON, Min: 2, Default: 2},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"merge_mode": map[string]any{
					"type":    "string",
					"enum":    []string{"all", "any", "first"},
					"default": "all",
				},
			},
		},
	}
}

func forkNodeType() *NodeType {
	return &NodeType{
		ID:             "fork",
		Name:           "Fork",
		Description:    "Sends its input to every branch in parallel",
		Category:       models.CategoryTypeAction,
		Inputs:         mainInput(),
		DynamicOutputs: &DynamicPorts{Prefix: "branch", DataType: dataTypeJSON, Min: 1, Default: 2},
		Schema:         map[string]any{"type": "object"},
	}
}

func webhookTriggerNodeType() *NodeType {
	return &NodeType{
		ID:          models.NodeTypeTriggerWebhook,
		Name:        "Webhook Trigger",
		Description: "Starts the workflow when an HTTP request reaches the webhook path",
		Category:    models.CategoryTypeTrigger,
		Outputs:     []models.PortSpec{{Name: portSuccess, DataType: dataTypeJSON}},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"webhook_path": map[string]any{
					"type":    "string",
					"pattern": "^/",
				},
				"method": map[string]any{
					"type":    "string",
					"enum":    []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
					"default": "POST",
				},
				"json_schema": map[string]any{"type": "object"},
			},
			"required": []string{"webhook_path"},
		},
	}
}

func schedulerTriggerNodeType() *NodeType {
	return &NodeType{
		ID:          models.NodeTypeTriggerScheduler,
		Name:        "Scheduler Trigger",
		Description: "Starts the workflow on a cron schedule",
		Category:    models.CategoryTypeTrigger,
		Outputs:     []models.PortSpec{{Name: portSuccess, DataType: dataTypeJSON}},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cron_expression": map[string]any{
					"type":        "string",
					"description": "Standard five field cron expression",
				},
				"timezone": map[string]any{"type": "string"},
			},
			"required": []string{"cron_expression"},
		},
		Check: checkCronExpression,
	}
}

func kafkaTriggerNodeType() *NodeType {
	return &NodeType{
		ID:          models.NodeTypeTriggerKafka,
		Name:        "Kafka Trigger",
		Description: "Starts the workflow for each message on a Kafka topic",
		Category:    models.CategoryTypeTrigger,
		Outputs:     []models.PortSpec{{Name: portSuccess, DataType: dataTypeJSON}},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"topic":          map[string]any{"type": "string", "minLength": 1},
				"consumer_group": map[string]any{"type": "string", "minLength": 1},
				"brokers": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 1,
				},
			},
			"required": []string{"topic", "consumer_group", "brokers"},
		},
	}
}

func checkCronExpression(config map[string]any) error {
	expr, ok := config["cron_expression"].(string)
	if !ok {
		return nil
	}

	_, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	return nil
}

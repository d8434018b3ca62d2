package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"holidayplanner/models"
)

// Executor dispatches tool calls requested by a run to the registered tools.
// Execute never fails: whatever goes wrong is folded into the returned
// ToolOutput so the run loop can always submit a complete batch and the model
// can react to the failure text.
type Executor struct {
	tools  []AssistantTool
	byName map[string]AssistantTool
}

// NewExecutor validates the tool set once at startup. Duplicate or empty tool
// names are configuration errors, not runtime conditions.
func NewExecutor(tools []AssistantTool) (*Executor, error) {
	byName := make(map[string]AssistantTool, len(tools))
	for _, tool := range tools {
		name := tool.Name()
		if name == "" {
			return nil, fmt.Errorf("tool with empty name registered")
		}
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", name)
		}
		schema := tool.FunctionSchema()
		if schema.Name != name {
			return nil, fmt.Errorf("tool %q advertises schema for %q", name, schema.Name)
		}
		byName[name] = tool
	}

	return &Executor{tools: tools, byName: byName}, nil
}

// Schemas returns the function schemas in registration order, for advertising
// the tool set when a run is created.
func (e *Executor) Schemas() []FunctionSchema {
	schemas := make([]FunctionSchema, 0, len(e.tools))
	for _, tool := range e.tools {
		schemas = append(schemas, tool.FunctionSchema())
	}
	return schemas
}

// Execute runs a single tool call and always produces exactly one output for
// it, error text included.
func (e *Executor) Execute(ctx context.Context, call models.ToolCall) models.ToolOutput {
	output := models.ToolOutput{ToolCallID: call.ID}

	tool, ok := e.byName[call.Name]
	if !ok {
		log.Printf("[ERROR] Run requested unknown tool %q", call.Name)
		output.Output = fmt.Sprintf("Error: unknown tool %q", call.Name)
		return output
	}

	if err := e.checkRequiredArguments(tool, call.Arguments); err != nil {
		log.Printf("[ERROR] Invalid arguments for tool %q: %v", call.Name, err)
		output.Output = fmt.Sprintf("Error: invalid arguments for %q: %v", call.Name, err)
		return output
	}

	log.Printf("[INFO] Executing tool %q with arguments %s", call.Name, string(call.Arguments))
	result, err := tool.Call(ctx, string(call.Arguments))
	if err != nil {
		log.Printf("[ERROR] Tool %q execution failed: %v", call.Name, err)
		output.Output = fmt.Sprintf("Error: %v", err)
		return output
	}

	log.Printf("[INFO] Tool %q execution result: %s", call.Name, result)
	output.Output = result
	return output
}

// checkRequiredArguments rejects a call whose argument object is malformed or
// is missing a field the tool's schema declares required. Type mismatches are
// caught by the typed decode inside each tool.
func (e *Executor) checkRequiredArguments(tool AssistantTool, arguments json.RawMessage) error {
	provided := map[string]json.RawMessage{}
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &provided); err != nil {
			return fmt.Errorf("arguments are not a JSON object: %v", err)
		}
	}

	schema := tool.FunctionSchema()
	if schema.Parameters == nil {
		return nil
	}
	for _, field := range schema.Parameters.Required {
		if _, ok := provided[field]; !ok {
			return fmt.Errorf("missing required field %q", field)
		}
	}
	return nil
}

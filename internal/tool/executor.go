package tool

import (
	"context"
	"encoding/json"
	"time"
)

// EmptyOutputPlaceholder is returned when a tool produces no output.
// MCP clients render an empty text block as a failed call.
const EmptyOutputPlaceholder = "(Tool executed successfully with no output)"

type Executor struct {
	registry *Registry
}

func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute runs a single named tool. Lookup and execution failures are
// reported in the result, never as an error.
func (e *Executor) Execute(ctx context.Context, name string, params json.RawMessage) *CallResult {
	startTime := time.Now()

	call := &CallResult{
		ToolName:  name,
		Params:    params,
		StartTime: startTime,
	}

	t, err := e.registry.Get(name)
	if err != nil {
		call.Result = &Result{Success: false, Error: err.Error()}
		call.EndTime = time.Now()
		return call
	}

	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	result, err := t.Execute(ctx, params)
	if err != nil {
		result = &Result{Success: false, Error: err.Error()}
	}

	if result.Success && result.Output == "" {
		result.Output = EmptyOutputPlaceholder
	}

	call.Result = result
	call.EndTime = time.Now()
	return call
}

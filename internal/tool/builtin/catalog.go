package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"secretai/internal/tool"
)

// Catalog lists the models and endpoints registered on chain.
// *secretai.Secret satisfies it.
type Catalog interface {
	ListModels(ctx context.Context) ([]string, error)
	ListURLs(ctx context.Context, model string) ([]string, error)
}

type ListModelsTool struct {
	catalog Catalog
}

func NewListModelsTool(catalog Catalog) *ListModelsTool {
	return &ListModelsTool{catalog: catalog}
}

func (t *ListModelsTool) Name() string {
	return "list_models"
}

func (t *ListModelsTool) Description() string {
	return "List the models served by confidential Secret AI workers"
}

func (t *ListModelsTool) BestPractices() string {
	return `**list_models**: call it before list_urls; model names are case sensitive.`
}

func (t *ListModelsTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *ListModelsTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	models, err := t.catalog.ListModels(ctx)
	if err != nil {
		return &tool.Result{
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	return &tool.Result{
		Success: true,
		Output:  listOutput(models, "No models registered"),
		Data:    map[string]any{"models": models},
	}, nil
}

type ListURLsTool struct {
	catalog Catalog
}

func NewListURLsTool(catalog Catalog) *ListURLsTool {
	return &ListURLsTool{catalog: catalog}
}

func (t *ListURLsTool) Name() string {
	return "list_urls"
}

func (t *ListURLsTool) Description() string {
	return "List the worker endpoints serving a model, or every endpoint when no model is given"
}

func (t *ListURLsTool) BestPractices() string {
	return ""
}

func (t *ListURLsTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"model": map[string]any{
				"type":        "string",
				"description": "Model name as returned by list_models",
			},
		},
	}
}

func (t *ListURLsTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	var p struct {
		Model string `json:"model"`
	}

	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return &tool.Result{
				Success: false,
				Error:   fmt.Sprintf("invalid parameters: %v", err),
			}, nil
		}
	}

	urls, err := t.catalog.ListURLs(ctx, strings.TrimSpace(p.Model))
	if err != nil {
		return &tool.Result{
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	return &tool.Result{
		Success: true,
		Output:  listOutput(urls, "No URLs registered"),
		Data:    map[string]any{"urls": urls},
	}, nil
}

// Register adds the catalog tools to registry.
func Register(registry *tool.Registry, catalog Catalog) error {
	for _, t := range []tool.Tool{NewListModelsTool(catalog), NewListURLsTool(catalog)} {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func listOutput(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, "\n")
}

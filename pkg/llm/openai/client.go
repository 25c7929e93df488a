package openai

import (
	"context"
	"fmt"

	"secretai/pkg/llm"

	openai "github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a chat client for model against the endpoint described
// by config. Any OpenAI-compatible server works, including Ollama's /v1 API.
func NewClient(model string, config openai.ClientConfig) *Client {
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    c.convertMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	return c.convertResponse(resp)
}

func (c *Client) Provider() string {
	return "openai"
}

func (c *Client) Model() string {
	return c.model
}

// Helper method: message format conversion
func (c *Client) convertMessages(msgs []llm.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(msgs))
	for i, msg := range msgs {
		result[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return result
}

// Helper method: response conversion
func (c *Client) convertResponse(resp openai.ChatCompletionResponse) (*llm.ChatResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in chat response")
	}
	choice := resp.Choices[0]
	msg := choice.Message

	return &llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.Role(msg.Role),
			Reason:  msg.ReasoningContent,
			Content: msg.Content,
		},
		StopReason: llm.StopReason(choice.FinishReason),
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

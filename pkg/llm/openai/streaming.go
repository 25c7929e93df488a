package openai

import (
	"context"
	"errors"
	"io"
	"strings"

	"secretai/pkg/llm"

	openai "github.com/sashabaranov/go-openai"
)

type StreamReader struct {
	stream *openai.ChatCompletionStream
}

func (c *Client) ChatStream(ctx context.Context, req *llm.ChatRequest) (llm.StreamReader, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    c.convertMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}

	return &StreamReader{stream: stream}, nil
}

func (s *StreamReader) Recv() (*llm.Delta, error) {
	resp, err := s.stream.Recv()
	if errors.Is(err, io.EOF) {
		return &llm.Delta{Done: true}, nil
	}
	if err != nil {
		return nil, err
	}

	// usage-only chunks carry no choices
	if len(resp.Choices) == 0 {
		return &llm.Delta{}, nil
	}

	delta := resp.Choices[0].Delta
	return &llm.Delta{
		Role:    llm.Role(delta.Role),
		Reason:  delta.ReasoningContent,
		Content: delta.Content,
	}, nil
}

func (s *StreamReader) Close() error {
	return s.stream.Close()
}

// StreamToString is a helper that accumulates all content chunks into a single string
func StreamToString(ctx context.Context, reader llm.StreamReader) (string, error) {
	defer reader.Close()

	var builder strings.Builder

	for {
		select {
		case <-ctx.Done():
			return builder.String(), ctx.Err()
		default:
		}

		delta, err := reader.Recv()
		if err != nil {
			return "", err
		}

		if delta.Done {
			break
		}

		builder.WriteString(delta.Reason)
		builder.WriteString(delta.Content)
	}

	return builder.String(), nil
}

package llm

import "context"

// Client is the capability every chat backend exposes.
type Client interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	ChatStream(ctx context.Context, req *ChatRequest) (StreamReader, error)
	Provider() string
	Model() string
}

type ChatRequest struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

type ChatResponse struct {
	Message    Message
	StopReason StopReason
	Usage      Usage
}

type StreamReader interface {
	Recv() (*Delta, error)
	Close() error
}

// Delta is one chunk of a streamed response. Reason carries reasoning
// tokens for backends that report them separately from Content.
type Delta struct {
	Role    Role
	Reason  string
	Content string
	Done    bool
}

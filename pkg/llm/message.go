package llm

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role      Role
	Reason    string
	Content   string
	Timestamp time.Time
}

// SystemMessage and UserMessage are shorthands for building requests.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

type StopReason string

const (
	StopReasonStop   StopReason = "stop"
	StopReasonLength StopReason = "length"
)

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

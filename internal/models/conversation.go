package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderPerplexity Provider = "perplexity"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderPerplexity:
		return true
	}
	return false
}

// ChatMessage is the wire shape of one conversation turn.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the gateway request body. Provider and Model are optional.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Provider Provider      `json:"provider,omitempty"`
	Model    string        `json:"model,omitempty"`
}

// GatewayResponse is the decoded gateway response body. The gateway populates
// exactly one of the two fields.
type GatewayResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// Message is a ChatMessage held in a client session, with a generated id.
type Message struct {
	ID        string    `json:"id"`
	ConvID    string    `json:"conversation_id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (m Message) ChatMessage() ChatMessage {
	return ChatMessage{Role: m.Role, Content: m.Content}
}

type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

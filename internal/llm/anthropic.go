package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/RichardoC/ai-doctor/internal/config"
	"github.com/RichardoC/ai-doctor/internal/models"
)

const anthropicVersion = "2023-06-01"

// ContentBlockText is the only content block type this gateway sends.
const ContentBlockText = "text"

// contentBlock is one part of a multi-part Anthropic message.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicMessage struct {
	Role    models.Role    `json:"role"`
	Content []contentBlock `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []contentBlock `json:"content"`
}

type anthropicAdapter struct {
	invoker
}

func (a *anthropicAdapter) BuildRequest(ctx context.Context, p config.ProviderConfig, model string, msgs []models.ChatMessage) (*http.Request, error) {
	messages := make([]anthropicMessage, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, anthropicMessage{
			Role:    m.Role,
			Content: []contentBlock{{Type: ContentBlockText, Text: m.Content}},
		})
	}

	data, err := json.Marshal(anthropicRequest{
		Model:       model,
		System:      SystemPrompt,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", p.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", p.Name, err)
	}
	req.Header.Set("x-api-key", p.Credential)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (a *anthropicAdapter) ExtractReply(body []byte) string {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Content) == 0 {
		return ""
	}
	return resp.Content[0].Text
}

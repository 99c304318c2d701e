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

// chatCompletionRequest is the OpenAI chat-completions body, which
// Perplexity also accepts.
type chatCompletionRequest struct {
	Model            string               `json:"model"`
	Messages         []models.ChatMessage `json:"messages"`
	Temperature      float64              `json:"temperature"`
	TopP             float64              `json:"top_p"`
	FrequencyPenalty *float64             `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64             `json:"presence_penalty,omitempty"`
	MaxTokens        int                  `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatCompletionsAdapter serves OpenAI and Perplexity. Only OpenAI pins the
// penalties.
type chatCompletionsAdapter struct {
	invoker
	neutralPenalties bool
}

func (a *chatCompletionsAdapter) BuildRequest(ctx context.Context, p config.ProviderConfig, model string, msgs []models.ChatMessage) (*http.Request, error) {
	messages := make([]models.ChatMessage, 0, len(msgs)+1)
	messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: SystemPrompt})
	messages = append(messages, msgs...)

	body := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}
	if a.neutralPenalties {
		neutral := 0.0
		body.FrequencyPenalty = &neutral
		body.PresencePenalty = &neutral
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", p.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", p.Name, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.Credential)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (a *chatCompletionsAdapter) ExtractReply(body []byte) string {
	var resp chatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

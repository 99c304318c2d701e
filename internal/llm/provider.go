package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/RichardoC/ai-doctor/internal/config"
	"github.com/RichardoC/ai-doctor/internal/models"
)

// SystemPrompt is shared by every provider. It is a second red-flag check,
// independent of the client's local triage.
const SystemPrompt = "You are an AI medical assistant. Provide clear, empathetic, evidence-informed guidance. " +
	"You do not diagnose. Encourage seeking in-person care when appropriate and include safety warnings. " +
	"If you detect emergency red flags (e.g., chest pain, severe bleeding, shortness of breath, stroke signs, suicidal ideation), " +
	"instruct the user to seek emergency care immediately. Keep answers concise and actionable."

// Sampling parameters are fixed for every provider.
const (
	temperature = 0.2
	topP        = 0.9
	maxTokens   = 800
)

// Adapter translates a normalized conversation to one provider's wire
// format and back. Adding a provider means adding one Adapter.
type Adapter interface {
	// BuildRequest returns the outbound HTTP request for the conversation.
	BuildRequest(ctx context.Context, p config.ProviderConfig, model string, msgs []models.ChatMessage) (*http.Request, error)

	// Invoke sends the request and returns the raw response body. A
	// non-success status becomes an upstream *Error carrying that body.
	Invoke(p config.ProviderConfig, req *http.Request) ([]byte, error)

	// ExtractReply pulls the reply text out of a response body. An
	// unexpected shape yields "" rather than an error.
	ExtractReply(body []byte) string
}

// invoker is the transport shared by all adapters.
type invoker struct {
	client *http.Client
}

func (i invoker) Invoke(p config.ProviderConfig, req *http.Request) ([]byte, error) {
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", p.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", p.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(p, resp.StatusCode, string(body))
	}
	return body, nil
}

// NewAdapters returns one adapter per supported provider.
func NewAdapters(client *http.Client) map[models.Provider]Adapter {
	if client == nil {
		client = &http.Client{}
	}
	inv := invoker{client: client}
	return map[models.Provider]Adapter{
		models.ProviderOpenAI:     &chatCompletionsAdapter{invoker: inv, neutralPenalties: true},
		models.ProviderPerplexity: &chatCompletionsAdapter{invoker: inv},
		models.ProviderAnthropic:  &anthropicAdapter{invoker: inv},
	}
}

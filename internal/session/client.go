package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/RichardoC/ai-doctor/internal/models"
)

// Gateway sends a conversation to the chat gateway and returns its reply.
type Gateway interface {
	Send(ctx context.Context, msgs []models.ChatMessage) (string, error)
}

// HTTPGateway posts to a gateway URL.
type HTTPGateway struct {
	url    string
	client *http.Client
}

func NewHTTPGateway(url string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGateway{url: url, client: client}
}

// Send fails on transport errors and on any non-2xx status.
func (g *HTTPGateway) Send(ctx context.Context, msgs []models.ChatMessage) (string, error) {
	data, err := json.Marshal(models.ChatRequest{Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("LLM request failed: %d", resp.StatusCode)
	}

	var body models.GatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	return body.Reply, nil
}
